package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"sync"
)

// OriginChecker 校验浏览器连接的 Origin 头
type OriginChecker struct {
	allowed map[string]struct{} // nil 表示允许所有来源
}

// NewOriginChecker 创建来源校验器，列表中含 "*" 时不做限制
func NewOriginChecker(origins []string) *OriginChecker {
	if slices.Contains(origins, "*") {
		return &OriginChecker{}
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(o)] = struct{}{}
	}
	return &OriginChecker{allowed: allowed}
}

// Check 终端客户端不带 Origin，直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if oc.allowed == nil || origin == "" {
		return true
	}
	_, ok := oc.allowed[strings.ToLower(origin)]
	return ok
}

// IPFilter 按地址或网段放行/拒绝连接。配置了白名单时只放行白名单，黑名单优先
type IPFilter struct {
	mu    sync.RWMutex
	allow []netip.Prefix
	block []netip.Prefix
}

// NewIPFilter 由配置中的地址列表创建过滤器，条目可以是单个 IP 或 CIDR
func NewIPFilter(allow, block []string) (*IPFilter, error) {
	f := &IPFilter{}
	for _, s := range allow {
		if err := f.Allow(s); err != nil {
			return nil, err
		}
	}
	for _, s := range block {
		if err := f.Block(s); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid network %q: %w", s, err)
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid ip %q: %w", s, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Allow 加入白名单
func (f *IPFilter) Allow(s string) error {
	p, err := parsePrefix(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allow = append(f.allow, p)
	return nil
}

// Block 加入黑名单
func (f *IPFilter) Block(s string) error {
	p, err := parsePrefix(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = append(f.block, p)
	return nil
}

// Unblock 移除与 s 完全相同的黑名单条目
func (f *IPFilter) Unblock(s string) error {
	p, err := parsePrefix(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = slices.DeleteFunc(f.block, func(b netip.Prefix) bool { return b == p })
	return nil
}

// IsAllowed 无法解析的地址只在没有白名单时放行
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return len(f.allow) == 0 && len(f.block) == 0
	}
	addr = addr.Unmap()
	in := func(ps []netip.Prefix) bool {
		return slices.ContainsFunc(ps, func(p netip.Prefix) bool { return p.Contains(addr) })
	}

	if len(f.allow) > 0 && !in(f.allow) {
		return false
	}
	return !in(f.block)
}

// GetClientIP 取客户端真实 IP：X-Forwarded-For 的第一跳，其次 X-Real-IP，最后是连接地址
func GetClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
