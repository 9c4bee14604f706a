package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notchkit/island/internal/models"
)

func TestRender(t *testing.T) {
	temp := 61.0
	out := Render(models.StatsSample{
		CPUCores:   []float64{25, 100},
		CPUOverall: 62.5,
		CPUTemp:    &temp,
		Memory:     models.NewMemorySample(12<<30, 4<<30, 16<<30),
		Disk:       models.NewDiskSample(250_000_000_000, 500_000_000_000),
		GPU:        models.GPUSample{Percent: 30, Estimated: true},
	})

	assert.Contains(t, out, "62.5%")
	assert.Contains(t, out, "[##........]")
	assert.Contains(t, out, "[##########]")
	assert.Contains(t, out, "12 GiB / 16 GiB")
	assert.Contains(t, out, "yellow")
	assert.Contains(t, out, "250 GB / 500 GB")
	assert.Contains(t, out, "~30.0%")
	assert.Contains(t, out, "61°C")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[..........]", bar(0))
	assert.Equal(t, "[#####.....]", bar(55))
	assert.Equal(t, "[##########]", bar(250))
}

func TestConsole_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Write(models.StatsSample{}))
	assert.True(t, strings.HasSuffix(buf.String(), "\n\n"))
}
