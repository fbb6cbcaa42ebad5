package middlewares

const (
	CtxRequestID = "ctx.requestID"
	ctxIdentity  = "ctx.identity"
)
