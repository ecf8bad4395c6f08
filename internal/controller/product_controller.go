package controller

import (
	"strconv"

	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/pkg/serverutils"
	"ai-mailroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProductController interface {
	RegisterRoutes(r fiber.Router)
	Import(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	RebuildIndex(ctx *fiber.Ctx) error
	IndexStatus(ctx *fiber.Ctx) error
	SemanticSearch(ctx *fiber.Ctx) error
	Stock(ctx *fiber.Ctx) error
}

type productController struct {
	catalogService service.ICatalogService
	ledgerService  service.ILedgerService
}

func NewProductController(catalogService service.ICatalogService, ledgerService service.ILedgerService) IProductController {
	return &productController{
		catalogService: catalogService,
		ledgerService:  ledgerService,
	}
}

func (c *productController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/product/v1")
	h.Get("", c.List)
	h.Post("import", c.Import)
	h.Post("index/rebuild", c.RebuildIndex)
	h.Get("index/status", c.IndexStatus)
	h.Get("semantic-search", c.SemanticSearch)
	h.Get(":id/stock", c.Stock)
	h.Delete(":id", c.Delete)
}

func (c *productController) List(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	offset, _ := strconv.Atoi(ctx.Query("offset"))

	res, err := c.catalogService.ListProducts(ctx.Context(), ctx.Query("category"), limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list products", res))
}

func (c *productController) Delete(ctx *fiber.Ctx) error {
	if err := c.catalogService.DeleteProduct(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete product", nil))
}

func (c *productController) Import(ctx *fiber.Ctx) error {
	var req dto.ImportProductsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.ImportProducts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success import products", res))
}

func (c *productController) RebuildIndex(ctx *fiber.Ctx) error {
	res, err := c.catalogService.RebuildIndex(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rebuild index", res))
}

func (c *productController) IndexStatus(ctx *fiber.Ctx) error {
	res := c.catalogService.IndexStatus(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success get index status", res))
}

func (c *productController) SemanticSearch(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'q' is required")
	}

	budget, _ := strconv.Atoi(ctx.Query("budget_tokens"))

	res, err := c.catalogService.SemanticSearch(ctx.Context(), query, budget)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success semantic search", res))
}

func (c *productController) Stock(ctx *fiber.Ctx) error {
	res, err := c.ledgerService.Stock(ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get stock", res))
}
