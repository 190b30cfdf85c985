package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/logger"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// 存储桶
const (
	BucketLogos     = "logos"     // 机构logo
	BucketQrCodes   = "qrcodes"   // UPI收款码
	BucketStories   = "stories"   // 成功案例媒体
	BucketDocuments = "documents" // 认证材料
)

// 缩略图最长边
const thumbnailSize = 512

// Store 落盘对象存储，按桶分目录，返回公开URL
type Store struct {
	baseDir   string
	publicURL string
}

// New 创建对象存储
func New(cfg config.StorageConfig) (*Store, error) {
	for _, bucket := range []string{BucketLogos, BucketQrCodes, BucketStories, BucketDocuments} {
		if err := os.MkdirAll(filepath.Join(cfg.BaseDir, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("创建存储目录失败: %w", err)
		}
	}
	return &Store{
		baseDir:   cfg.BaseDir,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// BaseDir 落盘根目录，由路由挂载为静态资源
func (s *Store) BaseDir() string {
	return s.baseDir
}

// SaveUpload 保存上传文件，返回公开URL
// 图片文件统一按最长边缩放后重新编码，顺带剥离原始元数据
func (s *Store) SaveUpload(bucket string, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := uuid.NewString() + ext
	dst := filepath.Join(s.baseDir, bucket, key)

	if isImageExt(ext) {
		if err := s.saveImage(file, dst); err != nil {
			return "", err
		}
		return s.PublicURL(bucket, key), nil
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("读取上传文件失败: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}
	return s.PublicURL(bucket, key), nil
}

// SaveBytes 保存已生成的文件内容（如服务端生成的二维码）
func (s *Store) SaveBytes(bucket, ext string, data []byte) (string, error) {
	key := uuid.NewString() + ext
	dst := filepath.Join(s.baseDir, bucket, key)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("保存文件失败: %w", err)
	}
	return s.PublicURL(bucket, key), nil
}

// PublicURL 拼接公开访问URL
func (s *Store) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, key)
}

// saveImage 解码、缩放并重新编码图片
func (s *Store) saveImage(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("读取上传文件失败: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("解码图片失败: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > thumbnailSize || bounds.Dy() > thumbnailSize {
		img = imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	}

	if err := imaging.Save(img, dst); err != nil {
		return fmt.Errorf("保存图片失败: %w", err)
	}

	logger.Debug("Saved image %s (%dx%d)", dst, bounds.Dx(), bounds.Dy())
	return nil
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
