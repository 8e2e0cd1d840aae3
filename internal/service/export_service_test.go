package service

import (
	"testing"

	"paper_review_backend/internal/model"

	"github.com/xuri/excelize/v2"
)

func exportSummaryFixture() *ReviewSummary {
	return &ReviewSummary{
		Paper: &model.Paper{
			Code:        "0580",
			Subject:     "Mathematics",
			ExamYear:    "2024",
			ExamSession: "May/June",
			ExamBoard:   "CIE",
		},
		Tree: []ReviewNode{
			{
				ID: 1, NodeKey: "1", Kind: model.KindQuestion, Label: "1",
				DisplayText: "Solve for x", Marks: 5, QuestionType: model.Descriptive,
				HasAnswer: true, HasAttachments: true,
				Children: []ReviewNode{
					{
						ID: 2, NodeKey: "1-2", Kind: model.KindPart, Label: "(a)",
						DisplayText: "Show your working", Marks: 2,
						QuestionType: model.Descriptive,
					},
				},
			},
		},
		Statistics: ReviewStatistics{
			TotalQuestions: 1,
			TotalParts:     1,
			TotalMarks:     7,
			CompletionRate: 100,
		},
		Checklist: []ChecklistItem{
			{ID: "questions", Label: "题目数据", Status: "complete", Description: "1 道题已录入"},
		},
		Overall:   "complete",
		CanImport: true,
	}
}

func TestRenderReviewReport(t *testing.T) {
	buf, filename, err := renderReviewReport(exportSummaryFixture())
	if err != nil {
		t.Fatalf("renderReviewReport error: %v", err)
	}

	t.Run("filename carries code and year", func(t *testing.T) {
		if filename != "review_0580_2024.xlsx" {
			t.Errorf("filename = %q, want review_0580_2024.xlsx", filename)
		}
	})

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader error: %v", err)
	}
	defer f.Close()

	t.Run("detail header matches boolean columns", func(t *testing.T) {
		rows, err := f.GetRows("题目明细")
		if err != nil {
			t.Fatalf("GetRows error: %v", err)
		}
		if len(rows) < 3 {
			t.Fatalf("detail sheet rows = %d, want header plus two nodes", len(rows))
		}
		wantHeader := []string{"节点键", "层级", "题号", "题干", "分值", "题型", "有答案", "有附件"}
		for i, want := range wantHeader {
			if i >= len(rows[0]) || rows[0][i] != want {
				t.Errorf("header column %d = %q, want %q", i+1, cellAt(rows[0], i), want)
			}
		}
	})

	t.Run("nodes are flattened depth first", func(t *testing.T) {
		rows, err := f.GetRows("题目明细")
		if err != nil {
			t.Fatalf("GetRows error: %v", err)
		}
		if got := cellAt(rows[1], 0); got != "1" {
			t.Errorf("first node key = %q, want 1", got)
		}
		if got := cellAt(rows[2], 0); got != "1-2" {
			t.Errorf("second node key = %q, want 1-2", got)
		}
		if got := cellAt(rows[1], 7); got != "TRUE" {
			t.Errorf("attachment flag = %q, want TRUE", got)
		}
		if got := cellAt(rows[2], 7); got != "FALSE" {
			t.Errorf("child attachment flag = %q, want FALSE", got)
		}
	})

	t.Run("overview carries paper code", func(t *testing.T) {
		got, err := f.GetCellValue("概览", "B2")
		if err != nil {
			t.Fatalf("GetCellValue error: %v", err)
		}
		if got != "0580" {
			t.Errorf("overview B2 = %q, want 0580", got)
		}
	})
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
