package controller

import (
	"testlab_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type WSController struct {
	Hub *service.Hub
}

func NewWSController(hub *service.Hub) *WSController {
	return &WSController{Hub: hub}
}

// HandleWS godoc
// @Summary WebSocket 连接
// @Description 升级为 WebSocket，身份通过 login 事件绑定
// @Tags 实时
// @Router /ws [get]
func (c *WSController) HandleWS(ctx *gin.Context) {
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request)
}
