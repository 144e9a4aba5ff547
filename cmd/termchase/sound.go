package main

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// soundPlayer plays short tones for hits. Without an audio device it stays
// silent.
type soundPlayer struct {
	mu      sync.Mutex
	enabled bool
}

func newSoundPlayer(enable bool) (*soundPlayer, error) {
	sp := &soundPlayer{}
	if !enable {
		return sp, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return sp, err
	}
	sp.enabled = true
	return sp, nil
}

func (sp *soundPlayer) playTone(freq float64, d time.Duration) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.enabled {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

// hit is a short high blip
func (sp *soundPlayer) hit() {
	sp.playTone(880, 50*time.Millisecond)
}

// caught is a longer low tone
func (sp *soundPlayer) caught() {
	sp.playTone(220, 400*time.Millisecond)
}

func (sp *soundPlayer) close() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.enabled {
		speaker.Close()
		sp.enabled = false
	}
}
