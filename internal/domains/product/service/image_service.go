package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/domains/product/repository"
	"grocery-backend/internal/infrastructure/storage"
)

type imageService struct {
	images   repository.ProductImageRepository
	products repository.ProductRepository
	store    storage.AssetStore
}

func NewImageService(
	images repository.ProductImageRepository,
	products repository.ProductRepository,
	store storage.AssetStore,
) ImageService {
	return &imageService{images: images, products: products, store: store}
}

func (s *imageService) Create(ctx context.Context, productID uuid.UUID, file *multipart.FileHeader) (*model.ProductImage, error) {
	exists, err := s.products.ExistsByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrProductNotFound
	}

	upload, displayName, err := s.Upload(ctx, productID, file)
	if err != nil {
		return nil, err
	}
	return s.AttachUpload(ctx, productID, upload, displayName)
}

// maxImageBytes caps uploads at 1 MiB.
const maxImageBytes = 1 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload validates the file and pushes it to the asset host. Object
// names combine a uuid with a timestamp so replacing an image never
// collides with the old one.
func (s *imageService) Upload(ctx context.Context, productID uuid.UUID, file *multipart.FileHeader) (*storage.UploadResult, string, error) {
	if file.Size > maxImageBytes {
		return nil, "", fmt.Errorf("%w: %d bytes exceeds the %d byte limit", model.ErrInvalidImage, file.Size, maxImageBytes)
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return nil, "", fmt.Errorf("%w: unsupported content type %q", model.ErrInvalidImage, contentType)
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: open upload: %v", model.ErrUploadFailed, err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixMilli(), filepath.Ext(file.Filename))

	upload, err := s.store.Upload(ctx, "products/"+productID.String(), name, src, file.Size, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}
	return upload, file.Filename, nil
}

func (s *imageService) AttachUpload(ctx context.Context, productID uuid.UUID, upload *storage.UploadResult, displayName string) (*model.ProductImage, error) {
	now := time.Now()
	img := &model.ProductImage{
		ID:           uuid.New(),
		ProductID:    productID,
		PublicID:     upload.PublicID,
		OriginalPath: upload.URL,
		MediumPath:   MediumVariant(upload.URL),
		SmallPath:    SmallVariant(upload.URL),
		DisplayName:  displayName,
		Bytes:        upload.Bytes,
		Format:       upload.Format,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// RemoveByPublicID deletes the remote asset first; a remote failure
// leaves the row in place so the image stays addressable.
func (s *imageService) RemoveByPublicID(ctx context.Context, publicID string) error {
	if _, err := s.images.FindByPublicID(ctx, publicID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, publicID); err != nil {
		return err
	}

	return s.images.DeleteByPublicID(ctx, publicID)
}

func (s *imageService) FindOneByProductID(ctx context.Context, productID uuid.UUID) (*model.ProductImage, error) {
	return s.images.FindByProductID(ctx, productID)
}
