//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

// Player 播放游戏提示音，未加载的音效静默忽略
type Player struct {
	dir     string
	mu      sync.RWMutex
	buffers map[Effect]*beep.Buffer
	enabled bool
}

// NewPlayer 创建播放器，dir 为空时使用 DefaultDir
func NewPlayer(dir string) *Player {
	if dir == "" {
		dir = DefaultDir
	}
	return &Player{
		dir:     dir,
		buffers: make(map[Effect]*beep.Buffer),
	}
}

// Init 初始化扬声器并加载音效
func (p *Player) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	p.mu.Lock()
	p.enabled = true
	p.mu.Unlock()

	return p.load()
}

// load 只加载已知音效，缺失的文件跳过
func (p *Player) load() error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read sound dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		effect := Effect(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if !effect.Known() || (ext != ".mp3" && ext != ".wav") {
			continue
		}

		buf, err := decodeFile(filepath.Join(p.dir, entry.Name()), ext)
		if err != nil {
			continue
		}
		p.mu.Lock()
		p.buffers[effect] = buf
		p.mu.Unlock()
	}
	return nil
}

func decodeFile(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var src beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		src = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buf.Append(src)
	return buf, nil
}

// Play 播放音效
func (p *Player) Play(effect Effect) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.enabled {
		return
	}
	buf, ok := p.buffers[effect]
	if !ok {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

// Loaded 是否已加载该音效
func (p *Player) Loaded(effect Effect) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.buffers[effect]
	return ok
}

// Close 停止播放
func (p *Player) Close() {
	p.mu.Lock()
	p.enabled = false
	p.mu.Unlock()
	speaker.Clear()
}
