package service

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/nooele2/bell-webapp/internal/model"
)

// ── ICS 解析与生成 ──────────────────────────────────────────
//
// 导入：把学校假期日历（RFC 5545）展开为逐日的日期列表，
// 每个 VEVENT 覆盖 [DTSTART, DTEND) 中的每一天；缺少 DTEND 时只算当天。
// 导出：每条日期排期生成一个全天事件。
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	// 单个事件最多展开的天数，防止异常 DTEND 生成海量排期
	icsMaxEventDays = 366
	icsProductID    = "-//bell-webapp//bell schedule//EN"
	dateLayout      = "2006-01-02"
)

// CalendarDay ICS 展开后的一天
type CalendarDay struct {
	Date    string // YYYY-MM-DD
	Summary string
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseCalendarDays 解析 ICS 内容，按日期升序返回；同一天多个事件各占一条
func ParseCalendarDays(reader io.Reader, loc *time.Location) ([]CalendarDay, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var days []CalendarDay
	for _, evt := range cal.Events() {
		days = append(days, expandVEvent(evt, loc)...)
	}
	sortCalendarDays(days)
	return days, nil
}

// expandVEvent 无法解析 DTSTART 的事件直接忽略
func expandVEvent(evt *ics.VEvent, loc *time.Location) []CalendarDay {
	start, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return nil
	}
	start = truncateDay(start)

	end := start.AddDate(0, 0, 1)
	if dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc); err == nil {
		// DTEND 不含当天；带时刻的事件跨过午夜才算下一天
		e := truncateDay(dtEnd)
		if !dtEnd.Equal(e) {
			e = e.AddDate(0, 0, 1)
		}
		if e.After(start) {
			end = e
		}
	}

	summary := ""
	if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
		summary = strings.TrimSpace(p.Value)
	}

	var days []CalendarDay
	for d := start; d.Before(end) && len(days) < icsMaxEventDays; d = d.AddDate(0, 0, 1) {
		days = append(days, CalendarDay{Date: d.Format(dateLayout), Summary: summary})
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sortCalendarDays(days []CalendarDay) {
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

// BuildAssignmentCalendar 每条排期生成一个全天事件
//
// 摘要为作息表名称（静铃日为 "No Bells"），说明为排期说明；
// 日期无法解析的排期不进入日历。
func BuildAssignmentCalendar(schedules []model.Schedule, assignments []model.Assignment, stamp time.Time) string {
	names := make(map[string]string, len(schedules))
	for i := range schedules {
		names[schedules[i].ID] = schedules[i].Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, a := range assignments {
		day, err := time.Parse(dateLayout, a.Date)
		if err != nil {
			continue
		}

		summary := names[a.ScheduleID]
		if a.IsNoBell() {
			summary = legacyNoBellDescription
		}
		if summary == "" {
			summary = a.ScheduleID
		}

		evt := cal.AddEvent(a.ID + "@bell-webapp")
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(day)
		evt.SetAllDayEndAt(day.AddDate(0, 0, 1))
		evt.SetSummary(summary)
		if a.Description != "" {
			evt.SetDescription(a.Description)
		}
	}

	return cal.Serialize()
}
