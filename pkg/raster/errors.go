package raster

import stderrors "errors"

var errNoFrame = stderrors.New("no frame has been flushed")
