package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/requestdata"
	"github.com/nkashyap/taskhub-backend/internal/services"
)

type TaskHandler struct {
	log         *logger.Logger
	taskService services.TaskService
}

func NewTaskHandler(log *logger.Logger, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{log: log.With("handler", "TaskHandler"), taskService: taskService}
}

func (th *TaskHandler) CreateTask(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, ErrorEnvelope{Error: APIError{Message: "missing or invalid token"}})
		return
	}
	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid request body"}})
		return
	}
	task, err := th.taskService.CreateTask(c.Request.Context(), rd.UserID, input)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (th *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{
		Search:   c.Query("search"),
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
		DueDate:  c.Query("dueDate"),
	}
	tasks, err := th.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondOK(c, tasks)
}

func (th *TaskHandler) UpdateTask(c *gin.Context) {
	var input services.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "invalid request body"}})
		return
	}
	task, err := th.taskService.UpdateTask(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondOK(c, task)
}

func (th *TaskHandler) DeleteTask(c *gin.Context) {
	if err := th.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, th.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "task deleted successfully"})
}
