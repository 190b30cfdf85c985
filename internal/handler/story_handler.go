package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/storage"
	"github.com/gin-gonic/gin"
)

// StoryHandler 成功案例处理器
type StoryHandler struct {
	storyLogic *logic.StoryLogic
	ngoLogic   *logic.NgoLogic
	store      *storage.Store
}

// NewStoryHandler 创建成功案例处理器
func NewStoryHandler(storyLogic *logic.StoryLogic, ngoLogic *logic.NgoLogic, store *storage.Store) *StoryHandler {
	return &StoryHandler{storyLogic: storyLogic, ngoLogic: ngoLogic, store: store}
}

// CreateStory 机构提交成功案例，可附媒体文件
func (h *StoryHandler) CreateStory(c *gin.Context) {
	ngoId, err := strconv.ParseInt(c.PostForm("ngo_id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的机构ID")
		return
	}

	ngo, err := h.ngoLogic.GetNgo(ngoId)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	claims := auth.ClaimsFrom(c)
	if ngo.OwnerId != claims.UserId {
		ErrorResponse(c, http.StatusForbidden, "只有机构负责人可以执行此操作")
		return
	}

	story := &model.SuccessStoryModel{
		NgoId:     ngoId,
		Title:     c.PostForm("title"),
		StoryText: c.PostForm("story_text"),
	}

	if file, err := c.FormFile("media"); err == nil {
		url, err := h.store.SaveUpload(storage.BucketStories, file)
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
		story.MediaURL = url
	}

	if err := h.storyLogic.CreateStory(story); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "案例已提交，待管理员审核", ToStoryResponse(story))
}

// GetStories 公开案例列表
func (h *StoryHandler) GetStories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	ngoId, _ := strconv.ParseInt(c.DefaultQuery("ngo_id", "0"), 10, 64)

	stories, total, err := h.storyLogic.ListApproved(ngoId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	PagedResponse(c, "获取成功案例成功", "stories", ToStoryResponseList(stories), NewPagination(page, pageSize, total))
}
