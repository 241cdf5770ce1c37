// Package export writes recommendations and their roadmaps to spreadsheets.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/profile"
)

const (
	summarySheet = "Recommendations"
	roadmapSheet = "Roadmaps"
)

// ToExcel saves recommendations for p into outputPath, adding the .xlsx
// extension when missing. Roadmaps are included for catalog careers. It
// returns the final path.
func ToExcel(p *profile.UserProfile, recs []ai.Recommendation, c *catalog.Catalog, outputPath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(roadmapSheet); err != nil {
		return "", err
	}

	if err := writeSummary(f, p, recs); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeRoadmaps(f, recs, c); err != nil {
		return "", fmt.Errorf("failed to create roadmap sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
}

func writeSummary(f *excelize.File, p *profile.UserProfile, recs []ai.Recommendation) error {
	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	for col, width := range map[string]float64{"A": 28, "B": 12, "C": 60, "D": 50, "E": 28, "F": 40, "G": 40} {
		if err := f.SetColWidth(summarySheet, col, col, width); err != nil {
			return err
		}
	}

	name := "Career recommendations"
	if p != nil && strings.TrimSpace(p.Name) != "" {
		name = "Career recommendations for " + strings.TrimSpace(p.Name)
	}
	f.SetCellValue(summarySheet, "A1", name)
	f.SetCellStyle(summarySheet, "A1", "G1", style)
	f.MergeCell(summarySheet, "A1", "G1")
	f.SetCellValue(summarySheet, "A2", "Generated: "+time.Now().Format("2006-01-02 15:04:05"))

	headers := []string{"Career Path", "Match", "Reasoning", "Next Steps", "Timeline", "Skill Gaps", "Strengths"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(summarySheet, cell, h)
	}
	f.SetCellStyle(summarySheet, "A4", "G4", style)

	for i, rec := range recs {
		row := 5 + i
		values := []any{
			rec.CareerPath,
			rec.MatchScore,
			rec.Reasoning,
			strings.Join(rec.NextSteps, "\n"),
			rec.TimelineEstimate,
			strings.Join(rec.SkillGaps, ", "),
			strings.Join(rec.StrengthAreas, ", "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(summarySheet, cell, v)
		}
	}
	return nil
}

func writeRoadmaps(f *excelize.File, recs []ai.Recommendation, c *catalog.Catalog) error {
	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	f.SetColWidth(roadmapSheet, "A", "A", 28)
	f.SetColWidth(roadmapSheet, "B", "B", 30)
	f.SetColWidth(roadmapSheet, "C", "C", 14)
	f.SetColWidth(roadmapSheet, "D", "E", 50)

	headers := []string{"Career Path", "Phase", "Duration", "Skills", "Projects"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(roadmapSheet, cell, h)
	}
	f.SetCellStyle(roadmapSheet, "A1", "E1", style)

	row := 2
	for _, rec := range recs {
		if c == nil {
			break
		}
		path, ok := c.ByTitle(rec.CareerPath)
		if !ok {
			continue
		}
		for _, phase := range path.Roadmap {
			f.SetCellValue(roadmapSheet, fmt.Sprintf("A%d", row), path.Title)
			f.SetCellValue(roadmapSheet, fmt.Sprintf("B%d", row), phase.Name)
			f.SetCellValue(roadmapSheet, fmt.Sprintf("C%d", row), phase.Duration)
			f.SetCellValue(roadmapSheet, fmt.Sprintf("D%d", row), strings.Join(phase.Skills, ", "))
			f.SetCellValue(roadmapSheet, fmt.Sprintf("E%d", row), strings.Join(phase.Projects, "\n"))
			row++
		}
	}
	return nil
}
