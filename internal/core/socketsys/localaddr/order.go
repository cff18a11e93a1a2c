package localaddr

import (
	"bytes"
	"cmp"
	"net"
	"slices"
)

// category 地址类别，数值越小越优先
type category int

const (
	categoryOrdinary category = iota
	categoryLoopback
	categoryUnspecified
)

// normalize 将 IPv4 地址统一为 4 字节形式
func normalize(ip net.IP) net.IP {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip
}

func categoryOf(ip net.IP) category {
	if isAllZero(ip) {
		return categoryUnspecified
	}
	if ip.IsLoopback() {
		return categoryLoopback
	}
	return categoryOrdinary
}

func isAllZero(ip net.IP) bool {
	for _, b := range ip {
		if b != 0 {
			return false
		}
	}
	return true
}

// Compare 本地地址排序策略
//
// 顺序：普通地址 < 回环地址 < 全零地址。同类别内字节长度短的在前，
// 长度相同时按无符号字节序比较。
func Compare(a, b net.IP) int {
	na, nb := normalize(a), normalize(b)

	if c := cmp.Compare(categoryOf(na), categoryOf(nb)); c != 0 {
		return c
	}
	if c := cmp.Compare(len(na), len(nb)); c != 0 {
		return c
	}
	return bytes.Compare(na, nb)
}

// Sort 原地稳定排序
func Sort(addrs []net.IP) {
	slices.SortStableFunc(addrs, Compare)
}

// Sorted 返回排序后的新切片，不修改输入
func Sorted(addrs []net.IP) []net.IP {
	out := cloneIPs(addrs)
	Sort(out)
	return out
}

// cloneIPs 深拷贝地址列表，IPv4 统一为 4 字节
func cloneIPs(addrs []net.IP) []net.IP {
	out := make([]net.IP, len(addrs))
	for i, ip := range addrs {
		out[i] = append(net.IP(nil), normalize(ip)...)
	}
	return out
}
