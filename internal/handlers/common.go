package handlers

import (
	"fmt"
	"time"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/contaflux/contaflux-api/internal/services"
	"github.com/gofiber/fiber/v3"
)

// parsePeriodSelection reads mode + month/year query params.
// Defaults to the current month in the business timezone.
func parsePeriodSelection(c fiber.Ctx, loc *time.Location) (services.PeriodSelection, error) {
	mode := c.Query("mode", string(services.PeriodModeMonth))

	switch services.PeriodMode(mode) {
	case services.PeriodModeMonth:
		monthStr := c.Query("month")
		if monthStr == "" {
			now := models.DateOf(time.Now(), loc)
			return services.PeriodSelection{
				Mode:  services.PeriodModeMonth,
				Month: models.ReferenceMonth{Year: now.Year, Month: now.Month},
			}, nil
		}
		month, err := models.ParseReferenceMonth(monthStr)
		if err != nil {
			return services.PeriodSelection{}, fmt.Errorf("invalid month parameter: %w", err)
		}
		return services.PeriodSelection{Mode: services.PeriodModeMonth, Month: month}, nil

	case services.PeriodModeYear:
		year := fiber.Query(c, "year", time.Now().In(loc).Year())
		if year < 1900 || year > 9999 {
			return services.PeriodSelection{}, fmt.Errorf("invalid year parameter: %d", year)
		}
		return services.PeriodSelection{Mode: services.PeriodModeYear, Year: year}, nil

	default:
		return services.PeriodSelection{}, fmt.Errorf("invalid mode parameter %q, must be month or year", mode)
	}
}

// parseBasis reads the basis query param, defaulting to accrual.
func parseBasis(c fiber.Ctx) (models.Basis, error) {
	basis := c.Query("basis", "accrual")
	switch basis {
	case "accrual":
		return models.BasisAccrual, nil
	case "cash":
		return models.BasisCash, nil
	default:
		return "", fmt.Errorf("invalid basis parameter %q, must be accrual or cash", basis)
	}
}

// businessToday returns today's calendar date in the business timezone.
func businessToday(loc *time.Location) models.Date {
	return models.DateOf(time.Now(), loc)
}
