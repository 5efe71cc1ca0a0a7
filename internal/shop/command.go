package shop

import (
	"context"
	"fmt"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// Command это команда изменения состояния магазина.
type Command interface {
	Kind() string
}

// AddProduct создаёт товар.
type AddProduct struct {
	Input model.ProductInput
}

// UpdateProduct изменяет товар.
type UpdateProduct struct {
	ID    string
	Patch model.ProductPatch
}

// DeleteProduct удаляет товар.
type DeleteProduct struct {
	ID string
}

// AddSale записывает продажу.
type AddSale struct {
	Input SaleInput
}

// AddUser создаёт пользователя.
type AddUser struct {
	Input model.UserInput
}

// UpdateUser изменяет пользователя.
type UpdateUser struct {
	ID    string
	Patch model.UserPatch
}

// DeleteUser удаляет пользователя.
type DeleteUser struct {
	ID string
}

func (AddProduct) Kind() string    { return "add_product" }
func (UpdateProduct) Kind() string { return "update_product" }
func (DeleteProduct) Kind() string { return "delete_product" }
func (AddSale) Kind() string       { return "add_sale" }
func (AddUser) Kind() string       { return "add_user" }
func (UpdateUser) Kind() string    { return "update_user" }
func (DeleteUser) Kind() string    { return "delete_user" }

// Result это итог выполнения команды: значение или ошибка.
type Result struct {
	Value any
	Err   error
}

// OK сообщает, выполнена ли команда.
func (r Result) OK() bool {
	return r.Err == nil
}

// Execute выполняет команду. Удаления возвращают nil в Value.
func (e *Engine) Execute(ctx context.Context, cmd Command) Result {
	switch c := cmd.(type) {
	case AddProduct:
		p, err := e.AddProduct(ctx, c.Input)
		return result(p, err)
	case UpdateProduct:
		p, err := e.UpdateProduct(ctx, c.ID, c.Patch)
		return result(p, err)
	case DeleteProduct:
		return Result{Err: e.DeleteProduct(ctx, c.ID)}
	case AddSale:
		s, err := e.RecordSale(ctx, c.Input)
		return result(s, err)
	case AddUser:
		u, err := e.AddUser(ctx, c.Input)
		return result(u, err)
	case UpdateUser:
		u, err := e.UpdateUser(ctx, c.ID, c.Patch)
		return result(u, err)
	case DeleteUser:
		return Result{Err: e.DeleteUser(ctx, c.ID)}
	default:
		return Result{Err: fmt.Errorf("unknown command %T", cmd)}
	}
}

func result(v any, err error) Result {
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: v}
}
