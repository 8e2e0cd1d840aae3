package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrPaperNotFound      = errors.New("paper not found")
	ErrPaperImported      = errors.New("paper already imported")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidNode        = errors.New("invalid question node")
	ErrImportBlocked      = errors.New("checklist incomplete, import blocked")
)
