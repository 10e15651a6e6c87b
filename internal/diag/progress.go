package diag

import (
	"io"
	"strings"
	"sync"
)

// Progress: 面向用户的进度输出（非日志），每个分组在写出前打印一行键名。
// 写失败后进入禁用态为 no-op；nil 接收者安全。
type Progress struct {
	w       io.Writer
	enabled bool
	groups  int
	mu      sync.Mutex
}

// NewProgress 构造进度输出；w 为 nil 时返回禁用实例。
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, enabled: w != nil}
}

// Group 打印分组键（单行）。
func (p *Progress) Group(key string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	p.groups++
	if _, err := io.WriteString(p.w, safe(key)+"\n"); err != nil {
		p.enabled = false
	}
}

// Groups 返回已打印的分组数。
func (p *Progress) Groups() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.groups
}

// safe 避免换行等控制字符破坏逐行输出。
func safe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
