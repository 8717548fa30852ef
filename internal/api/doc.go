// Package api serves the ruche management API over HTTP.
//
// Routes:
//
//	POST   /bee               provision a node
//	GET    /bee/:id           node info
//	GET    /bee/:id/logs      container logs
//	GET    /bee/:id/events    audit trail
//	GET    /bee/:id/health    container state and bee API probe
//	POST   /bee/:id/start     start one node
//	POST   /bee/:id/stop      stop one node
//	POST   /bee/:id/recreate  recreate one node
//	DELETE /bee/:id/req       request deletion
//	DELETE /bee/:id           confirm deletion
//	GET    /bees              list nodes
//	POST   /bees/start        start all (or the listed) nodes
//	POST   /bees/stop         stop all (or the listed) nodes
//	POST   /bees/recreate     recreate all nodes
//	GET    /healthz           liveness
//
// Errors are answered as {"message": "..."} with the status given by
// errors.HTTPStatus.
package api
