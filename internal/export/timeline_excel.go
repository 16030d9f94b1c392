package export

import (
	"bytes"
	"fmt"
	"strings"

	"healthpulse-engine/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	timelineSheet = "Timeline"
	scoresSheet   = "Health Scores"
	timeLayout    = "2006-01-02 15:04:05"
)

// TimelineHeader 时间线表头
var TimelineHeader = []string{"Timestamp", "Type", "Title", "Severity", "ID"}

// ScoresHeader 评分历史表头
var ScoresHeader = []string{
	"Calculated At",
	"Overall",
	"Vital",
	"Symptom",
	"Mental",
	"Trend",
	"Risk Level",
	"Auto Alerts",
}

// GenerateTimelineExport 生成患者时间线导出文件
// 第一个工作表为时间线（按传入顺序），第二个为评分历史
func GenerateTimelineExport(patient models.PatientRef, events []models.TimelineEvent, scores []models.HealthScore) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	if _, err := f.NewSheet(timelineSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(scoresSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	// 删除后索引会变化，需重新查找
	index, err := f.GetSheetIndex(timelineSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to locate sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Health timeline - %s", patient.Name()),
		Subject: patient.ID,
		Creator: "HealthPulse",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, timelineSheet, TimelineHeader, []float64{20, 10, 60, 12, 38}, headerStyle, timelineRows(events)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSheet(f, scoresSheet, ScoresHeader, []float64{20, 10, 10, 10, 10, 12, 12, 60}, headerStyle, scoreRows(scores)); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}

func timelineRows(events []models.TimelineEvent) [][]any {
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		severity := ""
		if e.Severity != nil {
			severity = string(*e.Severity)
		}
		rows = append(rows, []any{
			e.Timestamp.Format(timeLayout),
			string(e.Type),
			e.Title,
			severity,
			e.ID,
		})
	}
	return rows
}

func scoreRows(scores []models.HealthScore) [][]any {
	rows := make([][]any, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, []any{
			s.CalculatedAt.Format(timeLayout),
			s.OverallScore,
			s.VitalScore,
			s.SymptomScore,
			s.MentalScore,
			string(s.Trend),
			string(s.RiskLevel),
			strings.Join(s.AutoAlerts, "; "),
		})
	}
	return rows
}

// writeSheet 写入表头、列宽、数据并冻结首行
func writeSheet(f *excelize.File, sheet string, headers []string, widths []float64, headerStyle int, rows [][]any) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := 0; i < len(headers) && i < len(widths); i++ {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2) // 第1行是表头
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := values
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}
