package model

type NodeKind string

const (
	KindQuestion NodeKind = "question"
	KindPart     NodeKind = "part"
	KindSubpart  NodeKind = "subpart"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Descriptive    QuestionType = "descriptive"
)

// PaperQuestion 题目节点。题/小题/子小题共用一张表，靠 Kind 区分层级，
// ParentID=0 表示顶层题目。Ordinal 即试卷上的出题顺序。
// swagger:model PaperQuestion
type PaperQuestion struct {
	BaseModel
	PaperID      uint            `gorm:"index;type:bigint unsigned" json:"paperId"`
	ParentID     uint            `gorm:"index;type:bigint unsigned;default:0" json:"parentId"`
	Kind         NodeKind        `gorm:"size:20;not null" json:"kind"`
	Ordinal      int             `gorm:"default:0" json:"ordinal"`
	Label        string          `gorm:"size:50" json:"label"` // 题号，如 "3"、"(b)"、"(ii)"
	Body         string          `gorm:"type:text" json:"body"`
	Marks        float64         `gorm:"default:0" json:"marks"`
	QuestionType QuestionType    `gorm:"size:50;default:'descriptive'" json:"questionType"`
	Difficulty   string          `gorm:"size:20" json:"difficulty,omitempty"`
	AnswerText   string          `gorm:"type:text" json:"answerText"` // 单一文本答案（与 CorrectAnswers 二选一）
	Answers      []CorrectAnswer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
	Attachments  []Attachment    `gorm:"foreignKey:QuestionID" json:"attachments,omitempty"`
	Children     []PaperQuestion `gorm:"-" json:"children,omitempty"`
}

func (PaperQuestion) TableName() string {
	return "paper_questions"
}

// CorrectAnswer 评分参考答案
type CorrectAnswer struct {
	BaseModel
	QuestionID          uint    `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text                string  `gorm:"type:text;not null" json:"text"`
	MarkWeight          float64 `gorm:"default:0" json:"markWeight"`
	Unit                string  `gorm:"size:30" json:"unit,omitempty"`
	AcceptEquivalent    bool    `gorm:"default:false" json:"acceptEquivalent"`    // 等价表述可接受
	ErrorCarriedForward bool    `gorm:"default:false" json:"errorCarriedForward"` // 允许前步错误带入
	Requirement         string  `gorm:"size:30" json:"requirement,omitempty"`     // any_one_of | all_required
}

func (CorrectAnswer) TableName() string {
	return "correct_answers"
}

// Attachment 题目附件。URL 为规范化后的访问地址，DataURL/FileURL 为
// 历史数据的内联与旧字段，读入引擎时统一收敛到 URL。
type Attachment struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	FileName   string `gorm:"size:255" json:"fileName"`
	MimeType   string `gorm:"size:100" json:"mimeType"`
	URL        string `gorm:"size:500" json:"url"`
	StorageKey string `gorm:"size:500" json:"-"` // 存储层对象键，删除时用
	DataURL    string `gorm:"type:mediumtext" json:"dataUrl,omitempty"`
	FileURL    string `gorm:"size:500" json:"fileUrl,omitempty"`
	ByteSize   int64  `gorm:"default:0" json:"byteSize"`
}

func (Attachment) TableName() string {
	return "attachments"
}
