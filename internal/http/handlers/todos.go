package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/domain/todo"
	"github.com/todovault/todovault/internal/http/middlewares"
)

type TodoStore interface {
	ListByOwner(ctx context.Context, userID int64) ([]todo.Todo, error)
	GetByID(ctx context.Context, userID, id int64) (todo.Todo, error)
	Create(ctx context.Context, userID int64, text string) (todo.Todo, error)
	Complete(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
}

// TodosHandler owns the per-user todo routes. Every store call carries the
// caller's internal ID, so a todo owned by someone else behaves exactly like
// one that does not exist - including for admins.
type TodosHandler struct {
	todos TodoStore
}

func NewTodosHandler(todos TodoStore) *TodosHandler {
	return &TodosHandler{todos: todos}
}

type CreateTodoRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *TodosHandler) ListTodos(ctx *gin.Context) {
	caller, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Token does not exist!")
		return
	}

	todos, err := h.todos.ListByOwner(ctx.Request.Context(), caller.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list todos")
		return
	}

	// Capitalized key preserved from the original API contract.
	ctx.JSON(http.StatusOK, gin.H{
		"Todos": todos,
	})
}

func (h *TodosHandler) GetTodo(ctx *gin.Context) {
	caller, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Token does not exist!")
		return
	}

	id, err := parseTodoID(ctx)

	if err != nil {
		RespondNotFound(ctx, "No Todo found!")
		return
	}

	t, err := h.todos.GetByID(ctx.Request.Context(), caller.ID, id)

	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			RespondNotFound(ctx, "No Todo found!")
			return
		}
		RespondInternal(ctx, "Could not fetch todo")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"Todo": t,
	})
}

func (h *TodosHandler) CreateTodo(ctx *gin.Context) {
	caller, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Token does not exist!")
		return
	}

	var req CreateTodoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	_, err := h.todos.Create(ctx.Request.Context(), caller.ID, req.Text)

	if err != nil {
		RespondInternal(ctx, "Could not create todo")
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Todo created successfully!")
}

func (h *TodosHandler) CompleteTodo(ctx *gin.Context) {
	caller, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Token does not exist!")
		return
	}

	id, err := parseTodoID(ctx)

	if err != nil {
		RespondNotFound(ctx, "No Todo with the specified ID found!")
		return
	}

	err = h.todos.Complete(ctx.Request.Context(), caller.ID, id)

	if err != nil {
		switch {
		case errors.Is(err, todo.ErrAlreadyComplete):
			// no mutation happened; reporting success keeps the op idempotent
			RespondMessage(ctx, http.StatusOK, "Todo was already completed.")
		case errors.Is(err, todo.ErrNotFound):
			RespondNotFound(ctx, "No Todo with the specified ID found!")
		default:
			RespondInternal(ctx, "Could not complete todo")
		}
		return
	}

	RespondMessage(ctx, http.StatusOK, "The todo was completed successfully.")
}

func (h *TodosHandler) DeleteTodo(ctx *gin.Context) {
	caller, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Token does not exist!")
		return
	}

	id, err := parseTodoID(ctx)

	if err != nil {
		RespondNotFound(ctx, "No Todo with the specified ID found!")
		return
	}

	err = h.todos.Delete(ctx.Request.Context(), caller.ID, id)

	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			RespondNotFound(ctx, "No Todo with the specified ID found!")
			return
		}
		RespondInternal(ctx, "Could not delete todo")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Todo was deleted successfully!")
}

// A non-numeric id can never match a row, so it reads as not-found rather
// than a bad request.
func parseTodoID(ctx *gin.Context) (int64, error) {
	return strconv.ParseInt(ctx.Param("id"), 10, 64)
}
