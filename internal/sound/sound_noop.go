//go:build ci

package sound

// Player CI 环境下不初始化音频设备
type Player struct{}

func NewPlayer(string) *Player {
	return &Player{}
}

func (p *Player) Init() error {
	return nil
}

func (p *Player) Play(Effect) {}

func (p *Player) Loaded(Effect) bool {
	return false
}

func (p *Player) Close() {}
