package controller

import (
	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/pkg/serverutils"
	"ai-mailroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
	ProcessBatch(ctx *fiber.Ctx) error
	Outcomes(ctx *fiber.Ctx) error
}

type orderController struct {
	orderService service.IOrderService
}

func NewOrderController(orderService service.IOrderService) IOrderController {
	return &orderController{
		orderService: orderService,
	}
}

func (c *orderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/order/v1")
	h.Post("process", c.Process)
	h.Post("process-batch", c.ProcessBatch)
	h.Get("outcomes/:emailId", c.Outcomes)
}

func (c *orderController) Process(ctx *fiber.Ctx) error {
	var req dto.ProcessOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orderService.Process(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process order", res))
}

func (c *orderController) ProcessBatch(ctx *fiber.Ctx) error {
	var req dto.ProcessBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orderService.ProcessBatch(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process batch", res))
}

func (c *orderController) Outcomes(ctx *fiber.Ctx) error {
	res, err := c.orderService.Outcomes(ctx.Context(), ctx.Params("emailId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get outcomes", res))
}
