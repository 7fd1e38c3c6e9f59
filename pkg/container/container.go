package container

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-backend/internal/config"
	productHandler "grocery-backend/internal/domains/product/handler"
	productRepo "grocery-backend/internal/domains/product/repository"
	productService "grocery-backend/internal/domains/product/service"
	userHandler "grocery-backend/internal/domains/user/handler"
	userRepo "grocery-backend/internal/domains/user/repository"
	userService "grocery-backend/internal/domains/user/service"
	"grocery-backend/internal/infrastructure/cache"
	"grocery-backend/internal/infrastructure/database"
	"grocery-backend/internal/infrastructure/queue"
	"grocery-backend/internal/infrastructure/storage"
	pkgcache "grocery-backend/pkg/cache"
	pkgdb "grocery-backend/pkg/database"
	"grocery-backend/pkg/jwt"
)

// Container wires every layer explicitly. Built once in main.
type Container struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Cache  pkgcache.Cache
	Store  storage.AssetStore
	JWT    *jwt.Manager

	ProductHandler      *productHandler.ProductHandler
	PriceHistoryHandler *productHandler.PriceHistoryHandler
	UserHandler         *userHandler.UserHandler

	closeEnqueuer func() error
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store, err := storage.NewMinioStore(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, err
	}

	enqueuer, closeEnqueuer := queue.NewEnqueuer(cfg.Redis.Addr)
	txManager := pkgdb.NewTxManager(pool)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	products := productRepo.NewProductRepository(pool)
	prices := productRepo.NewPriceHistoryRepository(pool)
	images := productRepo.NewProductImageRepository(pool)
	users := userRepo.NewUserRepository(pool)

	imageSvc := productService.NewImageService(images, products, store)
	productSvc := productService.NewProductService(products, prices, imageSvc, txManager, redisCache, enqueuer)
	priceSvc := productService.NewPriceHistoryService(prices, products)
	userSvc := userService.NewUserService(users, jwtManager, enqueuer)

	return &Container{
		Config:              cfg,
		Pool:                pool,
		Cache:               redisCache,
		Store:               store,
		JWT:                 jwtManager,
		ProductHandler:      productHandler.NewProductHandler(productSvc),
		PriceHistoryHandler: productHandler.NewPriceHistoryHandler(priceSvc),
		UserHandler:         userHandler.NewUserHandler(userSvc),
		closeEnqueuer:       closeEnqueuer,
	}, nil
}

func (c *Container) Close() {
	if c.closeEnqueuer != nil {
		_ = c.closeEnqueuer()
	}
	c.Pool.Close()
}
