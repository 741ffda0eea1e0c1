package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"planifia/internal/metrics"
	"planifia/internal/planner"
	"planifia/internal/shopping"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	todayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	doneStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("#6A9955"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func renderWeek(days []planner.DayPlan, offset int) string {
	title := "This week"
	if offset == 1 {
		title = "Next week"
	}

	lines := []string{titleStyle.Render(title), ""}
	for _, d := range days {
		day := fmt.Sprintf("%-9s %s", d.Weekday, d.Date)
		if d.IsToday {
			day = todayStyle.Render(day + " *")
		}
		lines = append(lines, day,
			"  Lunch:  "+renderMeal(d.Lunch),
			"  Dinner: "+renderMeal(d.Dinner),
		)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderMeal(m *planner.Meal) string {
	if m == nil {
		return mutedStyle.Render("-")
	}
	return m.DishName + " " + mutedStyle.Render("("+m.ID+")")
}

func renderSaveResult(res *planner.SaveResult) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Saved %s for %s (%s)", res.Meal.DishName, res.Meal.Date, res.Meal.MealType))}
	switch {
	case !res.Eligible:
		lines = append(lines, mutedStyle.Render("Not in the current week: no ingredients added."))
	case len(res.Items) == 0:
		lines = append(lines, mutedStyle.Render("No ingredients found."))
	default:
		for _, it := range res.Items {
			lines = append(lines, "  + "+it.IngredientName)
		}
	}
	return strings.Join(lines, "\n")
}

func renderList(summary shopping.Summary) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Shopping list %d/%d", summary.Purchased, summary.Total)), ""}
	if summary.Total == 0 {
		lines = append(lines, mutedStyle.Render("The list is empty."))
	}
	for _, g := range summary.Groups {
		name := g.Name
		if len(g.IDs) > 1 {
			name += fmt.Sprintf(" x%d", len(g.IDs))
		}
		if g.Manual {
			name += mutedStyle.Render(" (manual)")
		}
		if g.Purchased {
			lines = append(lines, "[x] "+doneStyle.Render(name))
		} else {
			lines = append(lines, "[ ] "+name)
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderUsage(usage []metrics.DailyUsage) string {
	lines := []string{titleStyle.Render("LLM usage"), ""}
	if len(usage) == 0 {
		lines = append(lines, mutedStyle.Render("No data yet."))
	}
	for _, d := range usage {
		lines = append(lines, fmt.Sprintf("%s  %6d prompt  %6d completion  %3d execs",
			d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
