package otpflow

import "strings"

// NormalizeCode strips everything but ASCII digits from s and truncates the
// result to n digits.
func NormalizeCode(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() >= n {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CodeInput models a row of single-digit boxes with a focus cursor.
// It is not safe for concurrent use; Flow guards its own instance.
type CodeInput struct {
	boxes []byte // 0 marks an empty box
	focus int
}

func NewCodeInput(n int) *CodeInput {
	if n <= 0 {
		n = 1
	}
	return &CodeInput{boxes: make([]byte, n)}
}

// Len is the number of boxes.
func (c *CodeInput) Len() int { return len(c.boxes) }

// Type writes s into the box at index. Non-digits are dropped; more than one
// digit spills into the following boxes. An empty s clears the box.
func (c *CodeInput) Type(index int, s string) {
	if index < 0 || index >= len(c.boxes) {
		return
	}
	digits := NormalizeCode(s, len(c.boxes)-index)
	if s == "" {
		c.boxes[index] = 0
		c.focus = index
		return
	}
	if digits == "" {
		return
	}
	for i := 0; i < len(digits); i++ {
		c.boxes[index+i] = digits[i]
	}
	c.focus = min(index+len(digits), len(c.boxes)-1)
}

// Paste replaces the whole code with the digits found in s and moves focus
// to the box after the last one filled, or the last box when all are full.
func (c *CodeInput) Paste(s string) {
	digits := NormalizeCode(s, len(c.boxes))
	for i := range c.boxes {
		if i < len(digits) {
			c.boxes[i] = digits[i]
		} else {
			c.boxes[i] = 0
		}
	}
	c.focus = min(len(digits), len(c.boxes)-1)
}

// Backspace clears the focused box, or the previous one if the focused box
// is already empty.
func (c *CodeInput) Backspace() {
	if c.boxes[c.focus] == 0 && c.focus > 0 {
		c.focus--
	}
	c.boxes[c.focus] = 0
}

func (c *CodeInput) Clear() {
	clear(c.boxes)
	c.focus = 0
}

// Value returns the digits entered so far, in box order.
func (c *CodeInput) Value() string {
	var b strings.Builder
	for _, d := range c.boxes {
		if d != 0 {
			b.WriteByte(d)
		}
	}
	return b.String()
}

func (c *CodeInput) Focus() int { return c.focus }

// Complete reports whether every box holds a digit.
func (c *CodeInput) Complete() bool {
	for _, d := range c.boxes {
		if d == 0 {
			return false
		}
	}
	return true
}
