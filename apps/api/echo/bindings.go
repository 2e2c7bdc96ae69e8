package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// pathID reads the integer path parameter `name`. Malformed ids cannot match any
// record and answer 404.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
