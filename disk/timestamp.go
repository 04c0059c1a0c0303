package disk

import "time"

// CP/M Plus datestamps count days from 1 Jan 1978 (day 1), with BCD hour
// and minute bytes.
var cpmEpoch = time.Date(1977, 12, 31, 0, 0, 0, 0, time.UTC)

type Timestamp struct {
	Create time.Time
	Modify time.Time
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}

func cpmTime(day int, hour, minute byte) time.Time {
	if day == 0 {
		return time.Time{}
	}
	h, m := fromBCD(hour), fromBCD(minute)
	if h > 23 || m > 59 {
		return time.Time{}
	}
	return cpmEpoch.AddDate(0, 0, day).Add(
		time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

// decodeTimestampRecord decodes a status 0x21 directory record. Every fourth
// directory slot may hold one; its three 10-byte fields stamp the three file
// records preceding it in the same group of four.
func decodeTimestampRecord(raw []byte) [3]Timestamp {
	var out [3]Timestamp
	for i := 0; i < 3; i++ {
		f := raw[1+i*10 : 1+i*10+10]
		out[i] = Timestamp{
			Create: cpmTime(int(f[0])+int(f[1])<<8, f[2], f[3]),
			Modify: cpmTime(int(f[4])+int(f[5])<<8, f[6], f[7]),
		}
	}
	return out
}
