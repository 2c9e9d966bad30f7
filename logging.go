package rgbfx

import (
	logxi "github.com/mgutz/logxi/v1"
)

var logger = logxi.New("rgbfx")
