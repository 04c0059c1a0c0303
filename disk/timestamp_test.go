package disk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCpmTime(t *testing.T) {

	// day 1 is 1 Jan 1978
	assert.Equal(t, time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC), cpmTime(1, 0, 0))
	assert.Equal(t, time.Date(1978, 12, 31, 23, 59, 0, 0, time.UTC), cpmTime(365, 0x23, 0x59))

	// day 0 means never stamped
	assert.True(t, cpmTime(0, 0, 0).IsZero())

	// garbage BCD is treated as no stamp rather than a wild date
	assert.True(t, cpmTime(1, 0x99, 0x00).IsZero())
	assert.True(t, cpmTime(1, 0x00, 0x78).IsZero())
}

func TestDecodeTimestampRecord(t *testing.T) {

	raw := make([]byte, DIR_ENTRY_SIZE)
	raw[0] = STATUS_TIMESTAMP

	// second field (slot +1): created day 100 08:30, modified day 0x0200
	raw[11], raw[12] = 100, 0
	raw[13], raw[14] = 0x08, 0x30
	raw[15], raw[16] = 0x00, 0x02

	out := decodeTimestampRecord(raw)

	assert.True(t, out[0].Create.IsZero())
	assert.Equal(t, time.Date(1978, 4, 10, 8, 30, 0, 0, time.UTC), out[1].Create)
	assert.Equal(t, cpmEpoch.AddDate(0, 0, 512), out[1].Modify)
	assert.True(t, out[2].Modify.IsZero())
}
