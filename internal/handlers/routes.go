package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Admin        AdminAssetService
	Public       PublicAssetService
	User         UserAssetService
	Shares       ShareResolver
	ShareLimiter RateLimiter
	ShareBaseURL string
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Method
// and path-parameter matching use the ServeMux pattern syntax.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	admin := AdminAssetHandler{Assets: deps.Admin, ShareBaseURL: deps.ShareBaseURL}
	public := PublicAssetHandler{Assets: deps.Public}
	user := UserAssetHandler{Assets: deps.User}
	share := ShareHandler{Shares: deps.Shares, Limiter: deps.ShareLimiter}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("GET /api/v1/admin/assets", admin.List)
	mux.HandleFunc("POST /api/v1/admin/assets", admin.Create)
	mux.HandleFunc("GET /api/v1/admin/assets/{id}", admin.Get)
	mux.HandleFunc("PUT /api/v1/admin/assets/{id}", admin.Update)
	mux.HandleFunc("DELETE /api/v1/admin/assets/{id}", admin.Delete)

	mux.HandleFunc("GET /api/v1/admin/assets/{id}/grants", admin.ListGrants)
	mux.HandleFunc("POST /api/v1/admin/assets/{id}/grants", admin.CreateGrant)
	mux.HandleFunc("DELETE /api/v1/admin/assets/{id}/grants/{grantId}", admin.DeleteGrant)

	mux.HandleFunc("POST /api/v1/admin/assets/{id}/share-link", admin.CreateShareLink)
	mux.HandleFunc("GET /api/v1/admin/assets/{id}/share-link", admin.GetShareLink)
	mux.HandleFunc("PUT /api/v1/admin/assets/{id}/share-link", admin.UpdateShareLink)
	mux.HandleFunc("DELETE /api/v1/admin/assets/{id}/share-link", admin.DeleteShareLink)

	mux.HandleFunc("GET /api/v1/public/assets", public.List)
	mux.HandleFunc("GET /api/v1/public/assets/{id}/download", public.Download)

	mux.HandleFunc("GET /api/v1/assets", user.List)

	// /api/v1/assets/{id}/download and /api/v1/assets/share/{token} share
	// a shape, so ServeMux cannot hold both patterns; dispatch by segment.
	mux.HandleFunc("GET /api/v1/assets/{first}/{second}", func(w http.ResponseWriter, r *http.Request) {
		first := r.PathValue("first")
		second := r.PathValue("second")
		switch {
		case first == "share":
			r.SetPathValue("token", second)
			share.Redirect(w, r)
		case second == "download":
			r.SetPathValue("id", first)
			user.Download(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
