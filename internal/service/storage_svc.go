package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"teamwear_shop/internal/config"
	"teamwear_shop/pkg/utils"
)

// ==================== 接口定义 ====================

// StorageProvider 存储提供者接口
type StorageProvider interface {
	// Upload 按 key 上传文件，返回公开访问URL
	Upload(ctx context.Context, key string, data []byte, contentType string) (url string, err error)

	// Delete 按 key 删除文件
	Delete(ctx context.Context, key string) error
}

// ==================== 工厂方法 ====================

// NewStorageProvider 按配置创建存储提供者
func NewStorageProvider(cfg config.StorageConfig, publicBaseURL string) (StorageProvider, error) {
	switch cfg.Provider {
	case "supabase":
		return NewSupabaseStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, publicBaseURL+"/uploads")
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== UploadService 上传服务 ====================

// MaxUploadSize 单个文件上限 5MB
const MaxUploadSize = 5 << 20

// allowedImageTypes 允许上传的 MIME 类型及扩展名
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// allowedFolders 上传目录
var allowedFolders = map[string]bool{
	"products":   true,
	"categories": true,
	"clubs":      true,
	"carousel":   true,
	"misc":       true,
}

// UploadResult 上传结果
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadService 校验后转发到存储
type UploadService struct {
	provider StorageProvider
	now      func() time.Time
}

// NewUploadService 创建上传服务
func NewUploadService(provider StorageProvider) *UploadService {
	return &UploadService{provider: provider, now: time.Now}
}

// Upload 校验大小与类型后上传
// 类型以文件内容嗅探为准，不信任客户端声明的 Content-Type
func (s *UploadService) Upload(ctx context.Context, data []byte, folder string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, NewValidationError("No se recibió ningún archivo")
	}
	if len(data) > MaxUploadSize {
		return nil, NewValidationError("El archivo supera el tamaño máximo de 5 MB")
	}

	mime := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mime.String()]
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("Tipo de archivo no permitido: %s", mime.String()))
	}

	if folder == "" {
		folder = "products"
	}
	if !allowedFolders[folder] {
		return nil, NewValidationError("Carpeta de destino inválida")
	}

	key := s.generateKey(folder, ext)
	url, err := s.provider.Upload(ctx, key, data, mime.String())
	if err != nil {
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}
	return &UploadResult{URL: url, Path: key}, nil
}

// Delete 按存储路径删除
func (s *UploadService) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.provider.Delete(ctx, key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

func (s *UploadService) generateKey(folder, ext string) string {
	datePath := s.now().Format("2006/01/02")
	return fmt.Sprintf("%s/%s/%s%s", folder, datePath, uuid.New().String(), ext)
}

// cleanKey 拒绝绝对路径和目录穿越
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", NewValidationError("El parámetro path es obligatorio")
	}
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, "/../") {
		return "", NewValidationError("Ruta inválida")
	}
	return cleaned, nil
}

// ==================== Supabase Storage 实现 ====================

// SupabaseStorage 通过 Storage REST API 上传，使用 service-role key
type SupabaseStorage struct {
	http      *resty.Client
	baseURL   string
	bucket    string
	publicURL string
}

func NewSupabaseStorage(cfg config.StorageConfig) (*SupabaseStorage, error) {
	if cfg.SupabaseURL == "" || cfg.ServiceRoleKey == "" {
		return nil, fmt.Errorf("supabase 存储需要 SUPABASE_URL 和 SUPABASE_SERVICE_ROLE_KEY")
	}
	client := utils.NewAPIClient(cfg.SupabaseURL+"/storage/v1", 30*time.Second, false).
		SetAuthToken(cfg.ServiceRoleKey).
		SetHeader("apikey", cfg.ServiceRoleKey)

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/storage/v1/object/public/%s", cfg.SupabaseURL, cfg.Bucket)
	}
	return &SupabaseStorage{
		http:      client,
		baseURL:   cfg.SupabaseURL,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

func (s *SupabaseStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetHeader("Cache-Control", "3600").
		SetBody(data).
		Post(fmt.Sprintf("/object/%s/%s", s.bucket, key))
	if err != nil {
		return "", fmt.Errorf("上传 Supabase 失败: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("上传 Supabase 失败: HTTP %d %s", resp.StatusCode(), resp.String())
	}
	return s.publicURL + "/" + key, nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string][]string{"prefixes": {key}}).
		Delete(fmt.Sprintf("/object/%s", s.bucket))
	if err != nil {
		return fmt.Errorf("删除 Supabase 文件失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("删除 Supabase 文件失败: HTTP %d %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// ==================== S3 实现 ====================

// S3Storage AWS S3 或 S3 兼容存储（自定义 endpoint 时使用 path-style）
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	switch {
	case publicURL != "":
	case cfg.Endpoint != "":
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
	default:
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// ==================== 本地存储 (开发测试用) ====================

// LocalStorage 写入本地目录，由路由以 /uploads 静态目录提供访问
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key)))
}
