package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"planifia/internal/metrics"
	"planifia/internal/planner"
	"planifia/internal/shopping"
)

var weekdayNames = map[string]string{
	"Monday":    "Lunes",
	"Tuesday":   "Martes",
	"Wednesday": "Miércoles",
	"Thursday":  "Jueves",
	"Friday":    "Viernes",
	"Saturday":  "Sábado",
	"Sunday":    "Domingo",
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatShoppingList(summary shopping.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *Lista de la compra* (%d/%d)\n\n", summary.Purchased, summary.Total)

	if summary.Total == 0 {
		sb.WriteString("_La lista está vacía_\n")
		return sb.String()
	}

	for _, g := range summary.Groups {
		mark := "⬜"
		if g.Purchased {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s", mark, escape(g.Name)))
		if len(g.IDs) > 1 {
			sb.WriteString(fmt.Sprintf(" x%d", len(g.IDs)))
		}
		if g.Manual {
			sb.WriteString(" ✍️")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatWeekPlan(days []planner.DayPlan, offset int) string {
	var sb strings.Builder
	if offset == 0 {
		sb.WriteString("📅 *Esta semana*\n\n")
	} else {
		sb.WriteString("📅 *Semana siguiente*\n\n")
	}

	for _, d := range days {
		name := weekdayNames[d.Weekday]
		if d.IsToday {
			name += " (hoy)"
		}
		sb.WriteString(fmt.Sprintf("*%s* %s\n", name, d.Date))
		sb.WriteString(fmt.Sprintf("  🥗 %s\n", mealName(d.Lunch)))
		sb.WriteString(fmt.Sprintf("  🌙 %s\n", mealName(d.Dinner)))
	}
	return sb.String()
}

func mealName(m *planner.Meal) string {
	if m == nil {
		return "-"
	}
	return escape(m.DishName)
}

func formatSaveResult(res *planner.SaveResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ *%s* guardado para el %s\n", escape(res.Meal.DishName), res.Meal.Date))

	switch {
	case !res.Eligible:
		sb.WriteString("_Semana futura: no se añaden ingredientes a la lista._\n")
	case len(res.Items) == 0:
		sb.WriteString("_No se han encontrado ingredientes._\n")
	default:
		sb.WriteString(fmt.Sprintf("🛒 %d ingredientes añadidos:\n", len(res.Items)))
		for _, it := range res.Items {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(it.IngredientName)))
		}
	}
	return sb.String()
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
