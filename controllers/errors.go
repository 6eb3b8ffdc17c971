package controllers

import (
	"errors"

	"brightpath_go/ledger"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps a core failure to its HTTP status. Validation problems
// are 400, missing entities 404, state machine violations 422 and every
// race/stale-state conflict 409. Anything unrecognized is a 500.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrMissingOwner),
		errors.Is(err, ledger.ErrInvalidWindow):
		status = fiber.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidTransition):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrCapacityExceeded),
		errors.Is(err, ledger.ErrDuplicateEnrollment),
		errors.Is(err, ledger.ErrOverpayment),
		errors.Is(err, ledger.ErrSlotUnavailable),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrOwnerSettled):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
