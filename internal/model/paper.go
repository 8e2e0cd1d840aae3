package model

import (
	"encoding/json"
	"time"
)

type PaperStatus string

const (
	PaperDraft    PaperStatus = "draft"
	PaperImported PaperStatus = "imported"
)

// Paper 试卷元数据（导入前的工作副本）
// swagger:model Paper
type Paper struct {
	BaseModel
	Code        string      `gorm:"size:50;index" json:"code"`
	Subject     string      `gorm:"size:100" json:"subject"`
	ExamYear    string      `gorm:"size:20" json:"examYear"`
	ExamSession string      `gorm:"size:50" json:"examSession"`
	ExamBoard   string      `gorm:"size:100" json:"examBoard"`
	TotalMarks  float64     `gorm:"default:0" json:"totalMarks"` // 卷面声明总分，与题目合计分开
	Status      PaperStatus `gorm:"size:20;default:'draft'" json:"status"`
	CreatorID   uint        `gorm:"index;type:bigint unsigned" json:"creatorId"`
	ImportedAt  *time.Time  `json:"importedAt,omitempty"`
}

func (Paper) TableName() string {
	return "papers"
}

// ImportBatch 一次导入的审计记录，保存导入时刻的统计与清单快照
type ImportBatch struct {
	UUIDBase
	PaperID    uint            `gorm:"index;type:bigint unsigned" json:"paperId"`
	ImportedBy uint            `gorm:"type:bigint unsigned" json:"importedBy"`
	Statistics json.RawMessage `gorm:"type:json" json:"statistics"`
	Checklist  json.RawMessage `gorm:"type:json" json:"checklist"`
	FixedCount int             `gorm:"default:0" json:"fixedCount"` // 导入前自动修复的记录数
	Status     string          `gorm:"size:20;default:'completed'" json:"status"`
}

func (ImportBatch) TableName() string {
	return "import_batches"
}
