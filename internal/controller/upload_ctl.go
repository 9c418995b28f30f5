package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

type UploadController struct {
	uploadService *service.UploadService
	log           *zap.Logger
}

func NewUploadController(uploadService *service.UploadService, log *zap.Logger) *UploadController {
	return &UploadController{uploadService: uploadService, log: log}
}

// Upload 上传图片
// @Summary 上传图片（jpeg/png/webp/gif，最大 5MB）
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片"
// @Param folder formData string false "目录 products|categories|clubs|carousel|misc"
// @Success 200 {object} service.UploadResult
// @Failure 400 {object} dto.ErrorResp
// @Router /api/upload [post]
func (ctrl *UploadController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "No se recibió ningún archivo"})
		return
	}
	if fileHeader.Size > service.MaxUploadSize {
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "El archivo supera el tamaño máximo de 5 MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	defer file.Close()

	// 多读一个字节，超限交给 service 判断
	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadSize+1))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	result, err := ctrl.uploadService.Upload(c.Request.Context(), data, c.PostForm("folder"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete 删除已上传文件
// @Summary 按存储路径删除文件
// @Tags Upload
// @Security BearerAuth
// @Param path query string true "上传时返回的 path"
// @Success 200 {object} dto.MessageResp
// @Router /api/upload [delete]
func (ctrl *UploadController) Delete(c *gin.Context) {
	if err := ctrl.uploadService.Delete(c.Request.Context(), c.Query("path")); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Archivo eliminado"})
}
