package web

type Options struct {
	// Routes run during Configure to register handlers.
	Routes []func(r Router)
	// Middlewares run after the built-in request id, recovery and access log.
	Middlewares []Handler
}

type Option func(*Options)

func WithRoutes(f func(r Router)) Option {
	return func(o *Options) { o.Routes = append(o.Routes, f) }
}

func WithMiddlewares(m ...Handler) Option {
	return func(o *Options) { o.Middlewares = append(o.Middlewares, m...) }
}
