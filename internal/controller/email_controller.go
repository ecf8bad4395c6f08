package controller

import (
	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/pkg/serverutils"
	"ai-mailroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEmailController interface {
	RegisterRoutes(r fiber.Router)
	Classify(ctx *fiber.Ctx) error
	ClassifyBatch(ctx *fiber.Ctx) error
	Inquiry(ctx *fiber.Ctx) error
}

type emailController struct {
	classifierService service.IClassifierService
	inquiryService    service.IInquiryService
}

func NewEmailController(classifierService service.IClassifierService, inquiryService service.IInquiryService) IEmailController {
	return &emailController{
		classifierService: classifierService,
		inquiryService:    inquiryService,
	}
}

func (c *emailController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/email/v1")
	h.Post("classify", c.Classify)
	h.Post("classify-batch", c.ClassifyBatch)
	h.Post("inquiry", c.Inquiry)
}

func (c *emailController) Classify(ctx *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.classifierService.ClassifyBatch(ctx.Context(), &dto.ClassifyBatchRequest{
		Emails: []dto.EmailRequest{req},
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify email", res[0]))
}

func (c *emailController) ClassifyBatch(ctx *fiber.Ctx) error {
	var req dto.ClassifyBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.classifierService.ClassifyBatch(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify emails", res))
}

func (c *emailController) Inquiry(ctx *fiber.Ctx) error {
	var req dto.InquiryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.inquiryService.Answer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer inquiry", res))
}
