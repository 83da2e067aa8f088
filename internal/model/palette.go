package model

// ColorPalette 类别 → 默认配色的只读查找表
//
// 启动时构造一次，显式注入到需要它的 Service 中。
type ColorPalette struct {
	colors map[string]Color
}

// DefaultPalette 内置的四种类别配色
func DefaultPalette() *ColorPalette {
	return NewColorPalette(map[string]Color{
		ModeNormal:    {Name: "Yellow", Value: "#fef3c7", Border: "#fde047", Text: "#854d0e"},
		ModeLateStart: {Name: "Blue", Value: "#dbeafe", Border: "#60a5fa", Text: "#1e3a8a"},
		ModeBuddy:     {Name: "Green", Value: "#d1fae5", Border: "#34d399", Text: "#065f46"},
		ModeAssembly:  {Name: "Purple", Value: "#e9d5ff", Border: "#a78bfa", Text: "#5b21b6"},
	})
}

// NewColorPalette 复制传入的表，之后不再可变
func NewColorPalette(colors map[string]Color) *ColorPalette {
	cp := make(map[string]Color, len(colors))
	for k, v := range colors {
		cp[k] = v
	}
	return &ColorPalette{colors: cp}
}

// For 返回类别对应的配色；未知类别回落到 Normal
func (p *ColorPalette) For(mode string) Color {
	if c, ok := p.colors[mode]; ok {
		return c
	}
	return p.colors[ModeNormal]
}

// Ptr 便于直接赋值给 Schedule.Color
func (p *ColorPalette) Ptr(mode string) *Color {
	c := p.For(mode)
	return &c
}
