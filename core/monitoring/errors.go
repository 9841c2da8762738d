package monitoring

import "errors"

var errSampleRate = errors.New("traces_sample_rate must be in [0,1]")
