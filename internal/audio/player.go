package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Output is where decoded sounds are sent. The default is the system speaker.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Close()               { speaker.Close() }

// Player decodes sound files into cached buffers and plays them.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger
	output Output

	// 0.0 to 1.0
	volume float64

	initialized bool
	sampleRate  beep.SampleRate

	cacheMu sync.RWMutex
	cache   map[string]*beep.Buffer
}

// NewPlayer creates a player on the system speaker.
func NewPlayer(logger *slog.Logger) *Player {
	return NewPlayerWithOutput(speakerOutput{}, logger)
}

// NewPlayerWithOutput creates a player on a custom output.
func NewPlayerWithOutput(out Output, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger:     logger,
		output:     out,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume, clamped to [0, 1].
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = math.Max(0, math.Min(1, volume))
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a WAV, OGG or MP3 file, decoding it on first use.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	buffer, err := p.buffer(path)
	if err != nil {
		return err
	}
	return p.playBuffer(buffer)
}

// Preload decodes path into the cache.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}
	_, err := p.buffer(path)
	return err
}

// Cached reports whether path is decoded and cached.
func (p *Player) Cached(path string) bool {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	_, ok := p.cache[path]
	return ok
}

func (p *Player) buffer(path string) (*beep.Buffer, error) {
	p.cacheMu.RLock()
	buffer, ok := p.cache[path]
	p.cacheMu.RUnlock()
	if ok {
		return buffer, nil
	}

	buffer, err := p.loadSound(path)
	if err != nil {
		return nil, err
	}

	p.cacheMu.Lock()
	p.cache[path] = buffer
	p.cacheMu.Unlock()
	p.logger.Debug("decoded sound", "path", path, "samples", buffer.Len())
	return buffer, nil
}

func (p *Player) loadSound(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// ensureInitialized opens the output at the first decoded sound's rate.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := p.output.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

func (p *Player) playBuffer(buffer *beep.Buffer) error {
	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())
	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}
	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   volumeToExponent(volume),
			Silent:   volume == 0,
		}
	}

	p.output.Play(streamer)
	return nil
}

// Invalidate drops path from the cache.
func (p *Player) Invalidate(path string) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	delete(p.cache, path)
}

// ClearCache drops every cached sound.
func (p *Player) ClearCache() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string]*beep.Buffer)
}

// Close stops playback and releases the output.
func (p *Player) Close() {
	p.mu.Lock()
	if p.initialized {
		p.output.Close()
		p.initialized = false
	}
	p.mu.Unlock()

	p.ClearCache()
	p.logger.Debug("audio player closed")
}

// volumeToExponent maps a linear volume to effects.Volume's base-2
// exponent: 0.5 is -1, 0.25 is -2.
func volumeToExponent(volume float64) float64 {
	if volume <= 0 {
		return -10
	}
	return math.Log2(volume)
}
