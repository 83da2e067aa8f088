package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nooele2/bell-webapp/internal/model"
	"github.com/nooele2/bell-webapp/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// Sheet 名称
const (
	sheetSchedules   = "Schedules"
	sheetRingTimes   = "Ring Times"
	sheetAssignments = "Assignments"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 每次导出都从当前集合重新计算，不缓存任何派生结果
//   - ringtimes / ringdates 供外部打铃脚本轮询，格式必须逐字节稳定
//   - Excel 与 ICS 复用同一套旧版代码分配，保证与 ringtimes 一致
type ExportService interface {
	Ringtimes(ctx context.Context) (string, error)
	Ringdates(ctx context.Context) (string, error)
	// Workbook 返回 xlsx 内容与建议文件名
	Workbook(ctx context.Context) (*bytes.Buffer, string, error)
	Calendar(ctx context.Context) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: time.Now, logger: logger}
}

// ────────────────────── Ringtimes ──────────────────────

func (s *exportService) Ringtimes(ctx context.Context) (string, error) {
	schedules, err := s.loadSchedules(ctx)
	if err != nil {
		return "", err
	}
	return RenderRingtimes(schedules), nil
}

// ────────────────────── Ringdates ──────────────────────

func (s *exportService) Ringdates(ctx context.Context) (string, error) {
	schedules, assignments, err := s.loadAll(ctx)
	if err != nil {
		return "", err
	}
	return RenderRingdates(schedules, assignments), nil
}

// ════════════════════════════════════════════════════════════
// Workbook 导出为 Excel
// ════════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Schedules"：代码 / 名称 / 类别 / 默认 / 系统 / 打铃次数
//   - Sheet "Ring Times"：每个作息表的每次打铃一行
//   - Sheet "Assignments"：按日期升序，含代码与是否有自定义时间
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) Workbook(ctx context.Context) (*bytes.Buffer, string, error) {
	schedules, assignments, err := s.loadAll(ctx)
	if err != nil {
		return nil, "", err
	}
	codes := AllocateLegacyCodes(schedules)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 1. 作息表
	idx, _ := f.NewSheet(sheetSchedules)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	writeHeader(f, sheetSchedules, headerStyle, []string{"Code", "Name", "Mode", "Default", "System", "Bells"}, []float64{8, 28, 14, 10, 10, 8})
	row := 2
	for i := range schedules {
		sc := schedules[i]
		code := ""
		if sc.ID == model.NoBellScheduleID || sc.IsSystem {
			code = "-"
		} else if c := codes.CodeFor(sc.ID); c != legacyUnknownCode {
			code = displayCode(c)
		}
		setRow(f, sheetSchedules, row, code, sc.Name, sc.Mode, yesNo(sc.IsDefault), yesNo(sc.IsSystem), len(sc.Times))
		row++
	}

	// 2. 打铃时间
	f.NewSheet(sheetRingTimes)
	writeHeader(f, sheetRingTimes, headerStyle, []string{"Schedule", "#", "Time", "Description"}, []float64{28, 6, 10, 36})
	row = 2
	for i := range schedules {
		for j, t := range schedules[i].Times {
			setRow(f, sheetRingTimes, row, schedules[i].Name, j+1, t.Time, t.Description)
			row++
		}
	}

	// 3. 日期排期
	f.NewSheet(sheetAssignments)
	writeHeader(f, sheetAssignments, headerStyle, []string{"Date", "Code", "Schedule", "Description", "Custom Times"}, []float64{14, 8, 28, 36, 14})
	names := make(map[string]string, len(schedules))
	for i := range schedules {
		names[schedules[i].ID] = schedules[i].Name
	}
	sorted := append([]model.Assignment(nil), assignments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	row = 2
	for _, a := range sorted {
		name, code := names[a.ScheduleID], displayCode(codes.CodeFor(a.ScheduleID))
		if a.IsNoBell() {
			name, code = legacyNoBellDescription, "-"
		}
		custom := 0
		if a.CustomTimes != nil {
			custom = len(*a.CustomTimes)
		}
		setRow(f, sheetAssignments, row, a.Date, code, name, a.Description, custom)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("bell-schedule_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *exportService) Calendar(ctx context.Context) (string, error) {
	schedules, assignments, err := s.loadAll(ctx)
	if err != nil {
		return "", err
	}
	return BuildAssignmentCalendar(schedules, assignments, s.now().UTC()), nil
}

// ── 内部辅助方法 ──

func (s *exportService) loadSchedules(ctx context.Context) ([]model.Schedule, error) {
	schedules, err := s.repo.Schedule.List(ctx)
	if err != nil {
		s.logger.Error("读取作息表失败", zap.Error(err))
		return nil, err
	}
	return schedules, nil
}

func (s *exportService) loadAll(ctx context.Context) ([]model.Schedule, []model.Assignment, error) {
	schedules, err := s.loadSchedules(ctx)
	if err != nil {
		return nil, nil, err
	}
	assignments, err := s.repo.Assignment.List(ctx)
	if err != nil {
		s.logger.Error("读取日期排期失败", zap.Error(err))
		return nil, nil, err
	}
	return schedules, assignments, nil
}

func writeHeader(f *excelize.File, sheet string, style int, titles []string, widths []float64) {
	for i, title := range titles {
		col := colName(i)
		f.SetCellValue(sheet, cell(col, 1), title)
		if i < len(widths) {
			f.SetColWidth(sheet, col, col, widths[i])
		}
	}
	f.SetCellStyle(sheet, cell("A", 1), cell(colName(len(titles)-1), 1), style)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		f.SetCellValue(sheet, cell(colName(i), row), v)
	}
}

// displayCode 表格中空格代码显示为 "Normal"
func displayCode(code string) string {
	if code == legacyNormalCode {
		return "Normal"
	}
	return code
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
