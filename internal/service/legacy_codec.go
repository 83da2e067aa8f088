package service

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/nooele2/bell-webapp/internal/model"
)

// ── 旧版 ringtimes / ringdates 文本格式 ──────────────────────
//
// ringtimes：每行 "HH:MM <铃型> <说明>"。第二列含字母时开启新的作息块，
// 该列即作息表的旧版代码；否则为当前块的后续打铃。
// ringdates：每行 "<日期> <代码>  <说明>"。
//
// 导出时默认作息表记为空格代码，其余非系统作息表按集合顺序依次分配 A..Z，
// 第 27 个起无法表示，直接略过。
// ─────────────────────────────────────────────────────────────

const (
	// legacyNormalCode 默认作息表与静铃日在 ringdates 中的代码
	legacyNormalCode = " "
	// legacyUnknownCode 排期指向未分配代码的作息表
	legacyUnknownCode = "X"
	// legacyNoBellDescription 静铃日未填写说明时的默认文字
	legacyNoBellDescription = "No Bells"

	legacyMaxSpecials = 26
)

var ringtimesHeader = []string{
	"# ringtimes - generated by bell-webapp, do not edit",
	"# format: HH:MM <tone> <description>",
	"# tone: 0 starts the normal schedule, <code>0 starts a special schedule",
}

var ringdatesHeader = []string{
	"# ringdates - generated by bell-webapp, do not edit",
	"# format: YYYY-MM-DD <code>  <description>",
	"# code: blank = normal schedule or no bells, A-Z = special schedule, X = unknown",
}

// ════════════════════════════════════════════════════════════
// 代码分配
// ════════════════════════════════════════════════════════════

// LegacySchedule 已分配旧版代码的作息表
type LegacySchedule struct {
	Code     string
	Schedule model.Schedule
}

// LegacyCodes 一次导出使用的代码分配结果
type LegacyCodes struct {
	Normal   *model.Schedule
	Specials []LegacySchedule
	byID     map[string]string
}

// AllocateLegacyCodes 按集合顺序分配旧版代码
//
// 第一个 isDefault 的非系统作息表为 Normal；其余非系统作息表为 Special，
// 依次取 A..Z。没有时间的 Special 同样占用字母。
func AllocateLegacyCodes(schedules []model.Schedule) *LegacyCodes {
	codes := &LegacyCodes{byID: make(map[string]string, len(schedules))}

	normalIdx := -1
	for i := range schedules {
		if schedules[i].IsDefault && !schedules[i].IsSystem {
			normalIdx = i
			break
		}
	}
	if normalIdx >= 0 {
		normal := schedules[normalIdx]
		codes.Normal = &normal
		codes.byID[normal.ID] = legacyNormalCode
	}

	for i := range schedules {
		if i == normalIdx || schedules[i].IsSystem {
			continue
		}
		if len(codes.Specials) == legacyMaxSpecials {
			break
		}
		code := string(rune('A' + len(codes.Specials)))
		codes.Specials = append(codes.Specials, LegacySchedule{Code: code, Schedule: schedules[i]})
		codes.byID[schedules[i].ID] = code
	}

	return codes
}

// CodeFor 返回排期在 ringdates 中使用的代码
func (c *LegacyCodes) CodeFor(scheduleID string) string {
	if scheduleID == model.NoBellScheduleID {
		return legacyNormalCode
	}
	if code, ok := c.byID[scheduleID]; ok {
		return code
	}
	return legacyUnknownCode
}

// ════════════════════════════════════════════════════════════
// 导出
// ════════════════════════════════════════════════════════════

// RenderRingtimes 渲染 ringtimes 文本
func RenderRingtimes(schedules []model.Schedule) string {
	codes := AllocateLegacyCodes(schedules)

	lines := append([]string(nil), ringtimesHeader...)
	if codes.Normal != nil && len(codes.Normal.Times) > 0 {
		lines = append(lines, "", "# Normal: "+codes.Normal.Name)
		lines = appendRingBlock(lines, codes.Normal.Times, "0")
	}
	for _, sp := range codes.Specials {
		if len(sp.Schedule.Times) == 0 {
			continue
		}
		lines = append(lines, "", "# Special "+sp.Code+": "+sp.Schedule.Name)
		lines = appendRingBlock(lines, sp.Schedule.Times, sp.Code+"0")
	}

	return joinLines(lines)
}

func appendRingBlock(lines []string, times []model.BellTime, firstTone string) []string {
	for i, t := range times {
		tone := ""
		if i == 0 {
			tone = firstTone
		}
		// 说明为空时也保留铃型列
		lines = append(lines, t.Time+" "+padTone(tone)+" "+t.Description)
	}
	return lines
}

// padTone 铃型列固定两个字符宽
func padTone(tone string) string {
	for len(tone) < 2 {
		tone += " "
	}
	return tone
}

// RenderRingdates 渲染 ringdates 文本，按日期升序，同日期保持原有顺序
func RenderRingdates(schedules []model.Schedule, assignments []model.Assignment) string {
	codes := AllocateLegacyCodes(schedules)

	sorted := append([]model.Assignment(nil), assignments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	lines := append([]string(nil), ringdatesHeader...)
	lines = append(lines, "")
	for _, a := range sorted {
		desc := a.Description
		if a.IsNoBell() && desc == "" {
			desc = legacyNoBellDescription
		}
		lines = append(lines, a.Date+" "+codes.CodeFor(a.ScheduleID)+"  "+desc)
	}

	return joinLines(lines)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// ════════════════════════════════════════════════════════════
// 导入
// ════════════════════════════════════════════════════════════

// LegacyDate ringdates 中的一行，scheduleId 尚未解析
type LegacyDate struct {
	Date        string
	Code        string
	Description string
}

// ParseRingtimes 解析 ringtimes 文本
//
// 解析是宽松的：不足两列的行、出现在任何作息块之前的后续行都被忽略。
// 返回的错误只来自读取本身，此时已解析的部分仍然有效。
func ParseRingtimes(r io.Reader, palette *model.ColorPalette) ([]model.Schedule, error) {
	var (
		schedules []model.Schedule
		current   *model.Schedule
	)
	flush := func() {
		if current != nil && len(current.Times) > 0 {
			schedules = append(schedules, *current)
		}
		current = nil
	}

	err := scanLegacyLines(r, func(parts []string) {
		if len(parts) < 2 {
			return
		}
		at := parts[0]

		if containsLetter(parts[1]) {
			flush()
			code := parts[1]
			mode := modeForLegacyCode(code)
			current = &model.Schedule{
				ID:           strconv.Itoa(len(schedules) + 1),
				Name:         mode + " Schedule",
				Mode:         mode,
				Color:        palette.Ptr(mode),
				OriginalCode: code,
				Times:        []model.BellTime{},
			}
			current.Times = append(current.Times, model.BellTime{
				Time:        at,
				Description: legacyDescription(parts[2:], at),
			})
			return
		}

		if current != nil {
			current.Times = append(current.Times, model.BellTime{
				Time:        at,
				Description: legacyDescription(parts[1:], at),
			})
		}
	})
	flush()

	return schedules, err
}

// ParseRingdates 解析 ringdates 文本
func ParseRingdates(r io.Reader) ([]LegacyDate, error) {
	var dates []LegacyDate
	err := scanLegacyLines(r, func(parts []string) {
		if len(parts) < 2 {
			return
		}
		dates = append(dates, LegacyDate{
			Date:        parts[0],
			Code:        parts[1],
			Description: strings.Join(parts[2:], " "),
		})
	})
	return dates, err
}

// ResolveLegacyDates 按 original_code 子串匹配作息表，取第一个命中的
//
// 无法匹配的行原样返回在 unresolved 中，由调用方决定如何处理。
func ResolveLegacyDates(dates []LegacyDate, schedules []model.Schedule) (resolved []model.Assignment, unresolved []LegacyDate) {
	for _, d := range dates {
		scheduleID := ""
		for i := range schedules {
			oc := schedules[i].OriginalCode
			if oc != "" && strings.Contains(oc, d.Code) {
				scheduleID = schedules[i].ID
				break
			}
		}
		if scheduleID == "" {
			unresolved = append(unresolved, d)
			continue
		}
		resolved = append(resolved, model.Assignment{
			ID:          d.Date + "_" + d.Code,
			Date:        d.Date,
			ScheduleID:  scheduleID,
			Description: d.Description,
		})
	}
	return resolved, unresolved
}

// ── 内部辅助方法 ──

// scanLegacyLines 逐行切分，跳过空行与 # 注释
func scanLegacyLines(r io.Reader, fn func(parts []string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(strings.Fields(line))
	}
	return sc.Err()
}

func modeForLegacyCode(code string) string {
	switch {
	case strings.Contains(code, "L"):
		return model.ModeLateStart
	case strings.Contains(code, "B"):
		return model.ModeBuddy
	case strings.Contains(code, "A"):
		return model.ModeAssembly
	default:
		return model.ModeNormal
	}
}

func legacyDescription(rest []string, at string) string {
	if len(rest) == 0 {
		return "Bell " + at
	}
	return strings.Join(rest, " ")
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
