package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"planifia/internal/app"
	"planifia/internal/metrics"
	"planifia/internal/planner"
	"planifia/internal/session"
	"planifia/internal/shopping"
)

const helpText = `🍽 *PlanifIA*

/login <email> - iniciar sesión
/logout - cerrar sesión
/lista - ver la lista de la compra
/add <producto> - añadir a la lista
/check <producto> - marcar o desmarcar como comprado
/quitar <producto> - quitar de la lista
/semana [next] - ver el plan de la semana
/comida <aaaa-mm-dd> <lunch|dinner> <plato> - planificar una comida
/borrar <aaaa-mm-dd> <lunch|dinner> - borrar una comida
/metrics - uso del modelo y salud del sistema`

// handleCommand runs one chat command and returns the Markdown reply.
func (b *Bot) handleCommand(ctx context.Context, text string) string {
	cmd, args := parseCommand(text)

	switch cmd {
	case "", "/start", "/ayuda", "/help":
		return helpText
	case "/login":
		return b.login(ctx, args)
	case "/logout":
		if err := b.app.SignOut(ctx); err != nil {
			return b.failure("logout", err)
		}
		return "👋 Sesión cerrada."
	case "/metrics":
		return b.metricsReport(ctx)
	}

	ws, err := b.app.Workspace(ctx)
	if err != nil {
		if app.IsNoSession(err) {
			return "🔒 Inicia sesión primero con /login <email>."
		}
		return b.failure("workspace", err)
	}

	switch cmd {
	case "/lista":
		summary, err := ws.Shopping.Refresh(ctx)
		if err != nil {
			return b.failure("list", err)
		}
		return formatShoppingList(summary)
	case "/add":
		item, err := ws.Shopping.AddManualItem(ctx, args)
		if err != nil {
			return b.failure("add", err)
		}
		if item == nil {
			return "Uso: /add <producto>"
		}
		return fmt.Sprintf("✅ Añadido: %s", escape(item.IngredientName))
	case "/check":
		return b.updateGroup(ctx, ws.Shopping, args, func(group shopping.GroupedItem) error {
			return ws.Shopping.TogglePurchased(ctx, group)
		})
	case "/quitar":
		return b.updateGroup(ctx, ws.Shopping, args, func(group shopping.GroupedItem) error {
			return ws.Shopping.DeleteGroup(ctx, group)
		})
	case "/semana":
		offset := 0
		if a := strings.ToLower(args); a == "next" || a == "siguiente" {
			offset = 1
		}
		days, err := ws.Planner.WeekPlan(ctx, offset)
		if err != nil {
			return b.failure("week", err)
		}
		return formatWeekPlan(days, offset)
	case "/comida":
		return b.saveMeal(ctx, ws.Planner, args)
	case "/borrar":
		return b.deleteMeal(ctx, ws.Planner, args)
	}

	return helpText
}

func (b *Bot) login(ctx context.Context, email string) string {
	ws, err := b.app.SignIn(ctx, email)
	if err != nil {
		if errors.Is(err, session.ErrInvalidEmail) {
			return "Uso: /login <email>"
		}
		return b.failure("login", err)
	}
	return fmt.Sprintf("👋 Hola, %s", escape(ws.Session.Email))
}

func (b *Bot) updateGroup(ctx context.Context, list *shopping.List, name string, op func(shopping.GroupedItem) error) string {
	if strings.TrimSpace(name) == "" {
		return "Indica el producto."
	}
	group, err := list.Group(ctx, name)
	if err != nil {
		if errors.Is(err, shopping.ErrGroupNotFound) {
			return fmt.Sprintf("🤷 No hay *%s* en la lista.", escape(strings.TrimSpace(name)))
		}
		return b.failure("group", err)
	}
	if err := op(group); err != nil {
		return b.failure("group update", err)
	}
	return formatShoppingList(list.Summary())
}

func (b *Bot) saveMeal(ctx context.Context, p *planner.Planner, args string) string {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return "Uso: /comida <aaaa-mm-dd> <lunch|dinner> <plato>"
	}

	res, err := p.SaveMeal(ctx, planner.SaveRequest{
		Date:     fields[0],
		MealType: fields[1],
		DishName: strings.Join(fields[2:], " "),
	})
	if err != nil {
		if errors.Is(err, planner.ErrInvalidDate) || errors.Is(err, planner.ErrInvalidMealType) {
			return "❌ " + escape(err.Error())
		}
		return b.failure("save meal", err)
	}
	if res == nil {
		return "Indica el plato."
	}
	return formatSaveResult(res)
}

func (b *Bot) deleteMeal(ctx context.Context, p *planner.Planner, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "Uso: /borrar <aaaa-mm-dd> <lunch|dinner>"
	}
	mealType, err := planner.ParseMealType(fields[1])
	if err != nil {
		return "❌ " + escape(err.Error())
	}

	for offset := 0; offset <= planner.MaxWeekOffset; offset++ {
		days, err := p.WeekPlan(ctx, offset)
		if err != nil {
			return b.failure("week", err)
		}
		for _, d := range days {
			if d.Date != fields[0] {
				continue
			}
			meal := d.Lunch
			if mealType == planner.Dinner {
				meal = d.Dinner
			}
			if meal == nil {
				return "🤷 No hay nada planificado."
			}
			if err := p.DeleteMeal(ctx, meal.ID); err != nil {
				return b.failure("delete meal", err)
			}
			return fmt.Sprintf("🗑 Borrado: %s", escape(meal.DishName))
		}
	}
	return "Solo puedes borrar comidas de esta semana o la siguiente."
}

func (b *Bot) metricsReport(ctx context.Context) string {
	usage, err := b.app.Usage(ctx, 7)
	if err != nil {
		return b.failure("metrics", err)
	}
	return formatMetrics(usage, metrics.GetSysHealth(b.dataDir))
}

func (b *Bot) failure(op string, err error) string {
	b.logger.Error("telegram command failed", zap.String("op", op), zap.Error(err))
	return "❌ Algo ha ido mal, inténtalo de nuevo."
}

// parseCommand splits "/cmd@bot rest of text" into "/cmd" and "rest of text".
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	cmd, args, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(strings.ToLower(cmd), "@")
	return cmd, strings.TrimSpace(args)
}
