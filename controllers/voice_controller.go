package controllers

import (
	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

// VoiceController receives structured intents from the transcription
// pipeline. It is just another caller of the dispatcher; the one privilege
// voice has is ForceAdd.
type VoiceController struct{ Dispatcher *services.CommandDispatcher }

func NewVoiceController(d *services.CommandDispatcher) *VoiceController {
	return &VoiceController{Dispatcher: d}
}

// POST /voice/commands
func (h *VoiceController) Dispatch(c *gin.Context) {
	var cmd services.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	cmd.VenueID = utils.CurrentVenueID(c)
	if cmd.StaffID == 0 {
		cmd.StaffID = utils.CurrentStaffID(c)
	}

	out, err := h.Dispatcher.Dispatch(cmd)
	if err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	resp.OK(c, out)
}
