package utils

import (
	"fmt"
	"net"
	"time"
)

// CheckPortConnectable 端口能建立TCP连接说明有服务正在监听
func CheckPortConnectable(host string, port int) bool {
	timeout := time.Second
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)), timeout)
	if err != nil {
		return false
	}
	if conn != nil {
		conn.Close()
	}
	return true
}
