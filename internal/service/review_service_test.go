package service

import (
	"paper_review_backend/internal/model"
	"reflect"
	"testing"
)

func q(id uint, body string, marks float64, children ...model.PaperQuestion) model.PaperQuestion {
	node := model.PaperQuestion{
		Kind:     model.KindQuestion,
		Body:     body,
		Marks:    marks,
		Children: children,
	}
	node.ID = id
	return node
}

func part(id uint, marks float64, children ...model.PaperQuestion) model.PaperQuestion {
	node := model.PaperQuestion{
		Kind:     model.KindPart,
		Body:     "part body",
		Marks:    marks,
		Children: children,
	}
	node.ID = id
	return node
}

func subpart(id uint, marks float64) model.PaperQuestion {
	node := model.PaperQuestion{
		Kind:  model.KindSubpart,
		Body:  "subpart body",
		Marks: marks,
	}
	node.ID = id
	return node
}

func withAnswer(node model.PaperQuestion) model.PaperQuestion {
	node.Answers = []model.CorrectAnswer{{Text: "42"}}
	return node
}

func fullPaper() *model.Paper {
	return &model.Paper{
		Code:     "0580/22",
		Subject:  "Mathematics",
		ExamYear: "2024",
	}
}

func TestComputeStatisticsTotalMarks(t *testing.T) {
	tests := []struct {
		name      string
		questions []model.PaperQuestion
		want      float64
	}{
		{
			name:      "empty",
			questions: nil,
			want:      0,
		},
		{
			name:      "single level",
			questions: []model.PaperQuestion{q(1, "a", 5), q(2, "b", 3)},
			want:      8,
		},
		{
			name: "three levels summed independently",
			questions: []model.PaperQuestion{
				q(1, "a", 2, part(2, 3, subpart(3, 4))),
				q(4, "b", 1),
			},
			want: 10,
		},
		{
			name: "fractional marks",
			questions: []model.PaperQuestion{
				q(1, "a", 1.5, part(2, 2.5)),
			},
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStatistics(BuildReviewTree(tt.questions))
			if stats.TotalMarks != tt.want {
				t.Errorf("TotalMarks = %v, want %v", stats.TotalMarks, tt.want)
			}
		})
	}
}

func TestComputeStatisticsCompletionRate(t *testing.T) {
	t.Run("zero questions yields zero rate", func(t *testing.T) {
		stats := ComputeStatistics(nil)
		if stats.CompletionRate != 0 {
			t.Errorf("CompletionRate = %v, want 0", stats.CompletionRate)
		}
	})

	t.Run("rate stays within bounds", func(t *testing.T) {
		questions := []model.PaperQuestion{
			withAnswer(q(1, "a", 1)),
			q(2, "b", 1),
			withAnswer(q(3, "c", 1)),
		}
		stats := ComputeStatistics(BuildReviewTree(questions))
		if stats.CompletionRate < 0 || stats.CompletionRate > 100 {
			t.Fatalf("CompletionRate = %v, out of [0,100]", stats.CompletionRate)
		}
		// 与实现同序计算，避免浮点结合顺序差一个 ULP
		want := float64(2) / float64(3) * 100
		if stats.CompletionRate != want {
			t.Errorf("CompletionRate = %v, want %v", stats.CompletionRate, want)
		}
	})

	t.Run("answer counts only look at top level", func(t *testing.T) {
		child := part(2, 1)
		child.AnswerText = "only the part has an answer"
		questions := []model.PaperQuestion{q(1, "a", 1, child)}
		stats := ComputeStatistics(BuildReviewTree(questions))
		if stats.QuestionsWithAnswers != 0 {
			t.Errorf("QuestionsWithAnswers = %d, want 0", stats.QuestionsWithAnswers)
		}
	})
}

func TestBuildReviewTreeIdempotent(t *testing.T) {
	questions := []model.PaperQuestion{
		q(1, "first", 2, part(2, 3, subpart(3, 1))),
		withAnswer(q(4, "second", 5)),
	}

	first := BuildReviewTree(questions)
	second := BuildReviewTree(questions)
	if !reflect.DeepEqual(first, second) {
		t.Error("BuildReviewTree is not deterministic for identical input")
	}
}

func TestBuildReviewTreeNodeKeys(t *testing.T) {
	tree := BuildReviewTree([]model.PaperQuestion{
		q(12, "a", 1, part(34, 1, subpart(56, 1))),
	})

	if tree[0].NodeKey != "12" {
		t.Errorf("question key = %q, want %q", tree[0].NodeKey, "12")
	}
	if got := tree[0].Children[0].NodeKey; got != "12-34" {
		t.Errorf("part key = %q, want %q", got, "12-34")
	}
	if got := tree[0].Children[0].Children[0].NodeKey; got != "12-34-56" {
		t.Errorf("subpart key = %q, want %q", got, "12-34-56")
	}
}

func TestParseNodeKey(t *testing.T) {
	tests := []struct {
		key     string
		wantQ   uint
		wantP   uint
		wantSP  uint
		wantErr bool
	}{
		{key: "12", wantQ: 12},
		{key: "12-34", wantQ: 12, wantP: 34},
		{key: "12-34-56", wantQ: 12, wantP: 34, wantSP: 56},
		{key: "12-34-56-78", wantErr: true},
		{key: "abc", wantErr: true},
		{key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			gotQ, gotP, gotSP, err := ParseNodeKey(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseNodeKey(%q) expected error", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNodeKey(%q) error: %v", tt.key, err)
			}
			if gotQ != tt.wantQ || gotP != tt.wantP || gotSP != tt.wantSP {
				t.Errorf("ParseNodeKey(%q) = (%d,%d,%d), want (%d,%d,%d)",
					tt.key, gotQ, gotP, gotSP, tt.wantQ, tt.wantP, tt.wantSP)
			}
		})
	}
}

func TestRollUp(t *testing.T) {
	item := func(status string) ChecklistItem {
		return ChecklistItem{Status: status}
	}

	tests := []struct {
		name  string
		items []ChecklistItem
		want  string
	}{
		{"all complete", []ChecklistItem{item(StatusComplete), item(StatusComplete)}, StatusComplete},
		{"warning wins over complete", []ChecklistItem{item(StatusComplete), item(StatusWarning)}, StatusWarning},
		{"incomplete wins over warning", []ChecklistItem{item(StatusWarning), item(StatusIncomplete)}, StatusIncomplete},
		{"empty list is complete", nil, StatusComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RollUp(tt.items); got != tt.want {
				t.Errorf("RollUp = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("adding incomplete never improves the result", func(t *testing.T) {
		base := []ChecklistItem{item(StatusWarning)}
		if RollUp(base) != StatusWarning {
			t.Fatal("precondition failed")
		}
		worse := append(base, item(StatusIncomplete))
		if got := RollUp(worse); got != StatusIncomplete {
			t.Errorf("RollUp after adding incomplete = %q, want %q", got, StatusIncomplete)
		}
	})
}

func TestChecklistEmptyPaper(t *testing.T) {
	stats := ComputeStatistics(nil)
	checklist := BuildChecklist(fullPaper(), stats, 0)

	byID := make(map[string]ChecklistItem)
	for _, it := range checklist {
		byID[it.ID] = it
	}

	if stats.TotalQuestions != 0 {
		t.Errorf("TotalQuestions = %d, want 0", stats.TotalQuestions)
	}
	if byID["questions"].Status != StatusIncomplete {
		t.Errorf("questions item = %q, want incomplete", byID["questions"].Status)
	}

	overall := RollUp(checklist)
	if overall != StatusIncomplete {
		t.Errorf("overall = %q, want incomplete", overall)
	}
	if ImportAllowed(overall) {
		t.Error("import must be disabled for an empty paper")
	}
}

func TestChecklistSingleAnsweredQuestion(t *testing.T) {
	questions := []model.PaperQuestion{withAnswer(q(1, "What is 2+2?", 5))}
	stats := ComputeStatistics(BuildReviewTree(questions))
	checklist := BuildChecklist(fullPaper(), stats, 0)

	want := map[string]string{
		"metadata":    StatusComplete,
		"questions":   StatusComplete,
		"answers":     StatusComplete,
		"marks":       StatusComplete,
		"attachments": StatusWarning,
		"validation":  StatusComplete,
	}
	for _, it := range checklist {
		if it.Status != want[it.ID] {
			t.Errorf("item %s = %q, want %q", it.ID, it.Status, want[it.ID])
		}
	}

	overall := RollUp(checklist)
	if overall != StatusWarning {
		t.Errorf("overall = %q, want warning", overall)
	}
	if !ImportAllowed(overall) {
		t.Error("warning must not block import")
	}
}

func TestChecklistOrderIsStable(t *testing.T) {
	checklist := BuildChecklist(fullPaper(), ReviewStatistics{}, 0)
	wantOrder := []string{"metadata", "questions", "answers", "marks", "attachments", "validation"}
	if len(checklist) != len(wantOrder) {
		t.Fatalf("checklist has %d items, want %d", len(checklist), len(wantOrder))
	}
	for i, id := range wantOrder {
		if checklist[i].ID != id {
			t.Errorf("item %d = %q, want %q", i, checklist[i].ID, id)
		}
	}
}

func TestBuildFixList(t *testing.T) {
	t.Run("repairs empty body and zero marks", func(t *testing.T) {
		broken := q(7, "", 0)
		broken.Label = "3"
		broken.QuestionType = model.MultipleChoice

		fixed, report := BuildFixList([]model.PaperQuestion{broken})

		if fixed[0].Body == "" {
			t.Error("body still empty after fix")
		}
		if fixed[0].Marks != 1 {
			t.Errorf("marks = %v, want 1", fixed[0].Marks)
		}
		if fixed[0].Label != "3" || fixed[0].QuestionType != model.MultipleChoice {
			t.Error("unrelated fields were modified")
		}
		if report.Changed != 1 {
			t.Errorf("Changed = %d, want 1", report.Changed)
		}
		if len(report.ChangedKeys) != 1 || report.ChangedKeys[0] != "7" {
			t.Errorf("ChangedKeys = %v, want [7]", report.ChangedKeys)
		}
	})

	t.Run("counts nested repairs once per node", func(t *testing.T) {
		questions := []model.PaperQuestion{
			q(1, "", 0, part(2, 0)),
			q(3, "fine", 4),
		}
		_, report := BuildFixList(questions)
		if report.Changed != 2 {
			t.Errorf("Changed = %d, want 2", report.Changed)
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		original := []model.PaperQuestion{q(1, "", 0)}
		BuildFixList(original)
		if original[0].Body != "" || original[0].Marks != 0 {
			t.Error("input slice was mutated")
		}
	})

	t.Run("no-op on healthy input", func(t *testing.T) {
		_, report := BuildFixList([]model.PaperQuestion{q(1, "ok", 2)})
		if report.Changed != 0 {
			t.Errorf("Changed = %d, want 0", report.Changed)
		}
	})
}

func TestValidateQuestions(t *testing.T) {
	negative := q(1, "body", -2)
	zeroMarks := q(2, "body", 0)
	emptyBody := q(3, "", 3)

	issues := ValidateQuestions([]model.PaperQuestion{negative, zeroMarks, emptyBody})

	byField := map[string]int{}
	for _, issue := range issues {
		byField[issue.Field]++
	}
	// 负分同时命中“非负”和“未设置分值不成立”两类里的前者，
	// zeroMarks 命中未设置，emptyBody 命中空题干
	if byField["marks"] < 2 {
		t.Errorf("marks issues = %d, want at least 2", byField["marks"])
	}
	if byField["body"] != 1 {
		t.Errorf("body issues = %d, want 1", byField["body"])
	}
}

func TestAssembleHierarchy(t *testing.T) {
	flatNode := func(id, parentID uint, kind model.NodeKind) model.PaperQuestion {
		n := model.PaperQuestion{ParentID: parentID, Kind: kind, Body: "b", Marks: 1}
		n.ID = id
		return n
	}

	t.Run("builds three levels", func(t *testing.T) {
		flat := []model.PaperQuestion{
			flatNode(1, 0, model.KindQuestion),
			flatNode(2, 1, model.KindPart),
			flatNode(3, 2, model.KindSubpart),
		}
		roots, orphans := AssembleHierarchy(flat)
		if len(orphans) != 0 {
			t.Fatalf("orphans = %d, want 0", len(orphans))
		}
		if len(roots) != 1 || len(roots[0].Children) != 1 || len(roots[0].Children[0].Children) != 1 {
			t.Error("hierarchy not assembled as question > part > subpart")
		}
	})

	t.Run("reports dangling parents instead of dropping silently", func(t *testing.T) {
		flat := []model.PaperQuestion{
			flatNode(1, 0, model.KindQuestion),
			flatNode(2, 99, model.KindPart),
		}
		roots, orphans := AssembleHierarchy(flat)
		if len(roots) != 1 {
			t.Errorf("roots = %d, want 1", len(roots))
		}
		if len(orphans) != 1 || orphans[0].ID != 2 {
			t.Errorf("orphans = %v, want the node with missing parent", orphans)
		}
	})
}

func TestNormalizeQuestions(t *testing.T) {
	t.Run("fills missing label from position", func(t *testing.T) {
		out := NormalizeQuestions([]model.PaperQuestion{q(1, "a", 1), q(2, "b", 1)})
		if out[0].Label != "1" || out[1].Label != "2" {
			t.Errorf("labels = %q,%q, want 1,2", out[0].Label, out[1].Label)
		}
	})

	t.Run("converges attachment url fields", func(t *testing.T) {
		node := q(1, "a", 1)
		node.Attachments = []model.Attachment{
			{DataURL: "data:image/png;base64,xyz"},
			{FileURL: "/legacy/file.png"},
			{URL: "/uploads/kept.png", DataURL: "data:ignored"},
		}
		out := NormalizeQuestions([]model.PaperQuestion{node})
		got := out[0].Attachments
		if got[0].URL != "data:image/png;base64,xyz" {
			t.Errorf("attachment 0 URL = %q", got[0].URL)
		}
		if got[1].URL != "/legacy/file.png" {
			t.Errorf("attachment 1 URL = %q", got[1].URL)
		}
		if got[2].URL != "/uploads/kept.png" {
			t.Errorf("attachment 2 URL = %q", got[2].URL)
		}
	})
}

func TestTruncateForDisplay(t *testing.T) {
	long := make([]rune, 0, 120)
	for i := 0; i < 120; i++ {
		long = append(long, '字')
	}

	t.Run("long body is truncated with ellipsis", func(t *testing.T) {
		tree := BuildReviewTree([]model.PaperQuestion{q(1, string(long), 1)})
		got := []rune(tree[0].DisplayText)
		if len(got) != displayLabelLimit+3 {
			t.Errorf("display length = %d runes, want %d", len(got), displayLabelLimit+3)
		}
	})

	t.Run("empty body gets placeholder", func(t *testing.T) {
		tree := BuildReviewTree([]model.PaperQuestion{q(1, "", 1)})
		if tree[0].DisplayText != placeholderBody {
			t.Errorf("DisplayText = %q, want placeholder", tree[0].DisplayText)
		}
	})
}
