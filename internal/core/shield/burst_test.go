package shield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBurstDetectorThreshold(t *testing.T) {
	d := NewBurstDetector(100, time.Second, 20)
	now := time.Now()

	for i := 0; i < 20; i++ {
		assert.False(t, d.RecordAndCheck("client", now.Add(time.Duration(i)*time.Millisecond)),
			"request %d is within the burst maximum", i+1)
	}
	assert.True(t, d.RecordAndCheck("client", now.Add(21*time.Millisecond)),
		"request 21 inside the window must exceed")
}

func TestBurstDetectorWindowSlides(t *testing.T) {
	d := NewBurstDetector(100, time.Second, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.False(t, d.RecordAndCheck("client", now.Add(time.Duration(i)*100*time.Millisecond)))
	}
	// 1.5s later the first three have aged out.
	assert.False(t, d.RecordAndCheck("client", now.Add(1500*time.Millisecond)))
}

func TestBurstDetectorIsolatesIdentities(t *testing.T) {
	d := NewBurstDetector(100, time.Second, 2)
	now := time.Now()

	assert.False(t, d.RecordAndCheck("a", now))
	assert.False(t, d.RecordAndCheck("a", now))
	assert.False(t, d.RecordAndCheck("b", now), "b's window is independent of a's")
	assert.True(t, d.RecordAndCheck("a", now))
}
