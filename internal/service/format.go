package service

import (
	"fmt"
	"strings"

	"unit-roster/internal/models"
)

// DisplayDateLayout is the day-first form used in chat replies.
const DisplayDateLayout = "02/01/2006"

func formatPeriod(start, end models.Date) string {
	if start.Equal(end.Time) {
		return start.Format(DisplayDateLayout)
	}
	return fmt.Sprintf("%s a %s", start.Format(DisplayDateLayout), end.Format(DisplayDateLayout))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", n)
}

// FormatPersonnel renders the full record of one person.
func FormatPersonnel(p *models.Personnel) string {
	if p == nil {
		return "❌ Militar não encontrado."
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("🪖 %s %s", p.Rank, p.Name))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 ID: %s", p.ID))
	lines = append(lines, fmt.Sprintf("🔢 Matrícula: %s", p.Registration))
	lines = append(lines, fmt.Sprintf("📜 Antiguidade: %d", p.Seniority))
	lines = append(lines, fmt.Sprintf("🎖 Quadro: %s", p.Corps))
	lines = append(lines, fmt.Sprintf("🏢 Unidade/Seção: %s / %s", p.Unit, p.Section))
	lines = append(lines, fmt.Sprintf("📌 Situação: %s", p.Status))
	lines = append(lines, fmt.Sprintf("🗓 Escala: %s", p.DutySchedule))
	lines = append(lines, fmt.Sprintf("🏖 Saldo de férias: %s", pluralDays(p.VacationBalance)))
	lines = append(lines, fmt.Sprintf("🎫 Saldo de abono: %s", pluralDays(p.SpecialLeaveBalance)))

	roleEmoji := "👤"
	if p.Role == models.RoleAdmin {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Perfil: %s", roleEmoji, p.Role))

	return strings.Join(lines, "\n")
}

func FormatPersonnelList(list []models.Personnel) string {
	if len(list) == 0 {
		return "📭 Nenhum militar encontrado."
	}

	var lines []string
	lines = append(lines, "📋 Efetivo:")
	lines = append(lines, "")
	for _, p := range list {
		lines = append(lines, fmt.Sprintf("%s. %s %s (matr. %s)", p.ID, p.Rank, p.Name, p.Registration))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("📊 Total: %d", len(list)))

	return strings.Join(lines, "\n")
}

func FormatLeave(l models.LeaveRecord) string {
	line := fmt.Sprintf("%s %s: %s (%s)", l.ID, l.Type.Label(), formatPeriod(l.StartDate, l.EndDate), pluralDays(l.Days()))
	if l.Description != "" {
		line += " - " + l.Description
	}
	return line
}

// FormatHistory renders the leave history of one person.
func FormatHistory(p *models.Personnel, leaves []models.LeaveRecord) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("📂 Afastamentos de %s %s:", p.Rank, p.Name))
	lines = append(lines, "")
	if len(leaves) == 0 {
		lines = append(lines, "Nenhum afastamento registrado.")
	}
	for _, l := range leaves {
		lines = append(lines, "• "+FormatLeave(l))
	}
	return strings.Join(lines, "\n")
}

func FormatDashboard(d Dashboard) string {
	var lines []string
	lines = append(lines, "📊 Painel")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("👥 Efetivo total: %d", d.TotalPersonnel))
	lines = append(lines, fmt.Sprintf("🏖 De férias hoje: %d", d.OnLeaveToday))
	lines = append(lines, "")

	if len(d.RecentLeaves) == 0 {
		lines = append(lines, "📭 Nenhum afastamento registrado.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "🕒 Últimos afastamentos:")
	for _, r := range d.RecentLeaves {
		owner := r.PersonnelName
		if r.PersonnelRank != "" {
			owner = fmt.Sprintf("%s %s", r.PersonnelRank, r.PersonnelName)
		}
		lines = append(lines, fmt.Sprintf("• %s - %s, %s", owner, r.Type.Label(), formatPeriod(r.StartDate, r.EndDate)))
	}
	return strings.Join(lines, "\n")
}

func FormatTypeCounts(counts []TypeCount) string {
	var lines []string
	lines = append(lines, "📈 Afastamentos por tipo:")
	lines = append(lines, "")

	total := 0
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		total += c.Count
		lines = append(lines, fmt.Sprintf("• %s: %d", c.Label, c.Count))
	}
	if total == 0 {
		lines = append(lines, "Nenhum afastamento registrado.")
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Total: %d", total))

	return strings.Join(lines, "\n")
}
