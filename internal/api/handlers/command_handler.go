package handlers

import (
	"errors"

	"commandlayer/internal/dto"
	"commandlayer/internal/service"
	"commandlayer/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CommandHandler struct {
	commands *service.CommandService
	logger   *zap.Logger
}

func NewCommandHandler(commands *service.CommandService, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		commands: commands,
		logger:   logger,
	}
}

// ExecuteCommand runs one command through the resolution pipeline.
func (h *CommandHandler) ExecuteCommand(c *fiber.Ctx) error {
	var req dto.CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			ErrorCode: string(service.CodeInvalidRequest),
			Message:   "Request body must be a JSON command.",
		})
	}

	authCtx := middleware.GetAuthContext(c)
	caller := service.Caller{
		APIKeyID: authCtx.APIKeyID,
		Name:     authCtx.Name,
		Role:     string(authCtx.Role),
	}
	resp, err := h.commands.Execute(c.Context(), &req, caller)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(resp)
}

func (h *CommandHandler) renderError(c *fiber.Ctx, err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		h.logger.Error("Command execution failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			ErrorCode: "internal_error",
			Message:   "Failed to execute command.",
		})
	}

	return c.Status(statusForCode(svcErr.Code)).JSON(dto.ErrorResponse{
		ErrorCode: string(svcErr.Code),
		Message:   svcErr.Message,
		Details:   svcErr.Details,
	})
}

func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.CodeInvalidRequest, service.CodeInvalidPayload:
		return fiber.StatusBadRequest
	case service.CodeMissingFields:
		return fiber.StatusUnprocessableEntity
	case service.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case service.CodeForbidden:
		return fiber.StatusForbidden
	case service.CodeRateLimited:
		return fiber.StatusTooManyRequests
	case service.CodeProviderTimeout:
		return fiber.StatusGatewayTimeout
	case service.CodeProviderUnavailable:
		return fiber.StatusServiceUnavailable
	case service.CodeProviderHTTPError:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
