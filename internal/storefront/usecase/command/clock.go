package command

import "time"

var timeNow = time.Now
