package identity

import "github.com/znx3p0/canary/pkg/lib/log"

var logger = log.Logger("core/identity")
