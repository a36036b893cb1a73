package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/dto"
	"levelup-shop/internal/model"
	"levelup-shop/internal/repository"
)

// ProductService covers the catalog surface the cart and order flows depend
// on: lookups, admin maintenance, and the stock-adjust passthrough.
type ProductService interface {
	Create(ctx context.Context, req *dto.ProductRequest) (*dto.ProductView, error)
	Update(ctx context.Context, productID uint, req *dto.ProductRequest) (*dto.ProductView, error)
	Deactivate(ctx context.Context, productID uint) error
	GetByID(ctx context.Context, productID uint) (*dto.ProductView, error)
	GetByCode(ctx context.Context, code string) (*dto.ProductView, error)
	ListAll(ctx context.Context) ([]*dto.ProductView, error)
	ListActive(ctx context.Context) ([]*dto.ProductView, error)
	Search(ctx context.Context, keyword string) ([]*dto.ProductView, error)
	AdjustStock(ctx context.Context, productID uint, delta int) (*dto.ProductView, error)
}

var minPrice = decimal.NewFromFloat(0.01)

type productServiceImpl struct {
	productRepo repository.ProductRepository
	stock       StockService
}

func NewProductService(productRepo repository.ProductRepository, stock StockService) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
		stock:       stock,
	}
}

func (s *productServiceImpl) Create(ctx context.Context, req *dto.ProductRequest) (*dto.ProductView, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByCode(ctx, req.Code); err == nil {
		return nil, apperr.BadRequest("product code %q already exists", req.Code)
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	product := &model.Product{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Image:       req.Image,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("store product: %w", err)
	}

	return productView(product), nil
}

func (s *productServiceImpl) Update(ctx context.Context, productID uint, req *dto.ProductRequest) (*dto.ProductView, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Code != product.Code {
		if _, err := s.productRepo.FindByCode(ctx, req.Code); err == nil {
			return nil, apperr.BadRequest("product code %q already exists", req.Code)
		} else if !repository.IsNotFound(err) {
			return nil, err
		}
	}

	product.Code = req.Code
	product.Name = req.Name
	product.Description = req.Description
	product.Brand = req.Brand
	product.Image = req.Image
	product.Price = req.Price
	product.Stock = req.Stock
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return productView(product), nil
}

// Deactivate is a soft delete; existing cart and order items keep referencing
// the product.
func (s *productServiceImpl) Deactivate(ctx context.Context, productID uint) error {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return err
	}

	product.Active = false
	return s.productRepo.Save(ctx, product)
}

func (s *productServiceImpl) GetByID(ctx context.Context, productID uint) (*dto.ProductView, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return productView(product), nil
}

func (s *productServiceImpl) GetByCode(ctx context.Context, code string) (*dto.ProductView, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("product with code %q not found", code)
		}
		return nil, err
	}
	return productView(product), nil
}

func (s *productServiceImpl) ListAll(ctx context.Context) ([]*dto.ProductView, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return productViews(products), nil
}

func (s *productServiceImpl) ListActive(ctx context.Context) ([]*dto.ProductView, error) {
	products, err := s.productRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return productViews(products), nil
}

func (s *productServiceImpl) Search(ctx context.Context, keyword string) ([]*dto.ProductView, error) {
	products, err := s.productRepo.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return productViews(products), nil
}

func (s *productServiceImpl) AdjustStock(ctx context.Context, productID uint, delta int) (*dto.ProductView, error) {
	if err := s.stock.Adjust(ctx, productID, delta); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, productID)
}

func (s *productServiceImpl) findProduct(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("product %d not found", productID)
		}
		return nil, err
	}
	return product, nil
}

func validateProduct(req *dto.ProductRequest) error {
	if req.Code == "" || req.Name == "" {
		return apperr.BadRequest("product code and name are required")
	}
	if req.Price.LessThan(minPrice) {
		return apperr.BadRequest("product price must be at least %s", minPrice)
	}
	if req.Stock < 0 {
		return apperr.BadRequest("product stock cannot be negative")
	}
	return nil
}

func productView(p *model.Product) *dto.ProductView {
	return &dto.ProductView{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Image:       p.Image,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
	}
}

func productViews(products []*model.Product) []*dto.ProductView {
	views := make([]*dto.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, productView(p))
	}
	return views
}
