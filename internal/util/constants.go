package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 附件上传相关常量
const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"

	DefaultMaxFilesPerNode = 10
	DefaultMaxFileSizeMB   = 10
)

var (
	// 附件媒体类型白名单，前缀或完整类型
	AllowedAttachmentMimeTypes = []string{
		MimeImage,
		MimePDF,
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)
