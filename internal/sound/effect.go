package sound

// DefaultDir 默认音效目录
const DefaultDir = "assets/sounds"

// Effect 音效名，对应目录下的同名 mp3/wav 文件
type Effect string

const (
	EffectTurn   Effect = "turn"   // 轮到自己给线索
	EffectReveal Effect = "reveal" // 揭晓结果
)

// Known 是否为客户端使用的音效
func (e Effect) Known() bool {
	return e == EffectTurn || e == EffectReveal
}
