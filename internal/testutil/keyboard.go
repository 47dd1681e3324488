package testutil

import "time"

// KeyStep is one scripted Poll result.
type KeyStep struct {
	Key     byte
	Pressed bool
	Err     error
}

// KeyboardBuilder scripts the bytes a FakeKeyboard returns.
// Example:
//
//	kb := NewKeyboardBuilder().Idle(2).Press(terminal.KeyCtrlQ).Build()
type KeyboardBuilder struct {
	steps []KeyStep
}

// NewKeyboardBuilder creates an empty script.
func NewKeyboardBuilder() *KeyboardBuilder { return &KeyboardBuilder{} }

// Idle appends n polls that time out without a key (chainable).
func (b *KeyboardBuilder) Idle(n int) *KeyboardBuilder {
	for i := 0; i < n; i++ {
		b.steps = append(b.steps, KeyStep{})
	}
	return b
}

// Press appends one poll per key, each returning that key (chainable).
func (b *KeyboardBuilder) Press(keys ...byte) *KeyboardBuilder {
	for _, k := range keys {
		b.steps = append(b.steps, KeyStep{Key: k, Pressed: true})
	}
	return b
}

// Fail appends a poll returning err (chainable).
func (b *KeyboardBuilder) Fail(err error) *KeyboardBuilder {
	b.steps = append(b.steps, KeyStep{Err: err})
	return b
}

// Build returns the scripted keyboard.
func (b *KeyboardBuilder) Build() *FakeKeyboard {
	return &FakeKeyboard{steps: append([]KeyStep{}, b.steps...)}
}

// FakeKeyboard replays a script. Once the script is exhausted every poll
// times out.
type FakeKeyboard struct {
	steps []KeyStep
	polls int
}

// Poll returns the next scripted step.
func (k *FakeKeyboard) Poll(time.Duration) (byte, bool, error) {
	k.polls++
	if len(k.steps) == 0 {
		return 0, false, nil
	}
	s := k.steps[0]
	k.steps = k.steps[1:]
	return s.Key, s.Pressed, s.Err
}

// Polls returns how often Poll was called.
func (k *FakeKeyboard) Polls() int { return k.polls }
