// Package registry 维护已知终端表：启动时从文本文件整表加载，
// 运行期只做连接绑定与升级任务槽的读写。
package registry

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/suxuehui/jt808-deprecated/internal/bcd"
)

// PendingUpgrade 待下发的升级任务
type PendingUpgrade struct {
	Type     byte
	Version  string
	FilePath string
}

// Terminal 单条终端记录。Phone 在表内唯一；一条记录至多绑定一个活动连接。
type Terminal struct {
	Phone          string
	PhoneBCD       [6]byte
	AuthCode       [4]byte
	ManufacturerID [5]byte

	conn    any // 绑定的连接（不透明句柄），nil 表示未上线
	pending *PendingUpgrade
}

// Registry 已知终端集合，按手机号索引
type Registry struct {
	mu        sync.RWMutex
	terminals []*Terminal
	byPhone   map[string]*Terminal
}

// Load 从 phone;authcode 行格式的文件整表加载。authcode 是十进制u32，
// 其小端字节序即为线上4字节鉴权码。空行忽略。
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	defer f.Close()

	r := &Registry{byPhone: make(map[string]*Terminal)}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		phone, codeStr, ok := strings.Cut(line, ";")
		if !ok {
			return nil, fmt.Errorf("registry: %s:%d: missing ';'", path, lineNo)
		}
		phone = strings.TrimSpace(phone)
		code, err := strconv.ParseUint(strings.TrimSpace(codeStr), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("registry: %s:%d: bad authcode: %w", path, lineNo, err)
		}
		phoneBCD, err := bcd.CompressFixed(phone, 6)
		if err != nil {
			return nil, fmt.Errorf("registry: %s:%d: bad phone %q", path, lineNo, phone)
		}
		if _, dup := r.byPhone[phone]; dup {
			return nil, fmt.Errorf("registry: %s:%d: duplicate phone %q", path, lineNo, phone)
		}
		t := &Terminal{Phone: phone}
		copy(t.PhoneBCD[:], phoneBCD)
		binary.LittleEndian.PutUint32(t.AuthCode[:], uint32(code))
		r.terminals = append(r.terminals, t)
		r.byPhone[phone] = t
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return r, nil
}

// Empty 终端表是否为空
func (r *Registry) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.terminals) == 0
}

// Find 按手机号查找
func (r *Registry) Find(phone string) *Terminal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byPhone[phone]
}

// FindByBCD 按线上BCD手机号逐字节比对查找
func (r *Registry) FindByBCD(phone [6]byte) *Terminal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.terminals {
		if t.PhoneBCD == phone {
			return t
		}
	}
	return nil
}

// Bind 绑定活动连接
func (r *Registry) Bind(t *Terminal, conn any) {
	r.mu.Lock()
	t.conn = conn
	r.mu.Unlock()
}

// Unbind 解除连接绑定；仅当仍绑定着给定连接时生效，
// 避免旧连接的收尾误伤新连接
func (r *Registry) Unbind(t *Terminal, conn any) {
	r.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	r.mu.Unlock()
}

// Conn 返回绑定的连接，nil 表示终端不在线
func (r *Registry) Conn(t *Terminal) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return t.conn
}

// Online 终端是否有活动连接
func (r *Registry) Online(t *Terminal) bool { return r.Conn(t) != nil }

// SetManufacturer 记录注册时上报的制造商ID
func (r *Registry) SetManufacturer(t *Terminal, id [5]byte) {
	r.mu.Lock()
	t.ManufacturerID = id
	r.mu.Unlock()
}

// Manufacturer 最近一次注册上报的制造商ID
func (r *Registry) Manufacturer(t *Terminal) [5]byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return t.ManufacturerID
}

// SetPending 填入升级任务槽
func (r *Registry) SetPending(t *Terminal, p *PendingUpgrade) {
	r.mu.Lock()
	t.pending = p
	r.mu.Unlock()
}

// TakePending 取走并清空升级任务槽
func (r *Registry) TakePending(t *Terminal) *PendingUpgrade {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := t.pending
	t.pending = nil
	return p
}

// Info 终端的只读快照，供管理接口使用
type Info struct {
	Phone          string `json:"phone"`
	Online         bool   `json:"online"`
	ManufacturerID string `json:"manufacturerId,omitempty"`
	PendingUpgrade string `json:"pendingUpgrade,omitempty"`
}

// Snapshot 全表只读快照
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.terminals))
	for _, t := range r.terminals {
		info := Info{Phone: t.Phone, Online: t.conn != nil}
		if t.ManufacturerID != [5]byte{} {
			info.ManufacturerID = fmt.Sprintf("%X", t.ManufacturerID)
		}
		if t.pending != nil {
			info.PendingUpgrade = t.pending.Version
		}
		out = append(out, info)
	}
	return out
}
