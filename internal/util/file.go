package util

import (
	"io"
	"net/http"
	"strings"
)

// DetectMimeType 嗅探前 512 字节判定媒体类型，不做白名单判断。
// 白名单校验放在上传规则链里（数量、大小之后），由 MimeAllowed 承担。
func DetectMimeType(reader io.Reader) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}

// MimeAllowed 按白名单判断媒体类型（前缀或完整匹配）
func MimeAllowed(mimeType string, allowedTypes []string) bool {
	if mimeType == "" {
		return false
	}
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return true
		}
	}
	return false
}
