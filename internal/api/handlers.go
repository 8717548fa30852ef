package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ruche-hive/ruche/internal/deletion"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/lifecycle"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
)

type handlers struct {
	svc Service
}

// nodeID parses the :id route parameter. Both "7" and "node_07" are
// accepted; ids outside the fleet range are reported as not found.
func nodeID(c *fiber.Ctx) (int, error) {
	raw := c.Params("id")
	id, err := node.ParseID(raw)
	if err == nil {
		return id, nil
	}
	if n, convErr := c.ParamsInt("id"); convErr == nil {
		return 0, errors.NodeNotFound(n)
	}
	return 0, errors.ValidationError(err.Error())
}

func (h *handlers) liveness(c *fiber.Ctx) error {
	n, err := h.svc.Count(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(HealthResponse{Status: "ok", Service: "ruche", Nodes: n})
}

func (h *handlers) provision(c *fiber.Ctx) error {
	info, err := h.svc.Provision(c.UserContext())
	if err != nil {
		return err
	}
	logging.Info("node created", "node_id", info.ID, "operator", c.Locals("operator"))
	return c.JSON(info)
}

func (h *handlers) get(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	info, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

func (h *handlers) list(c *fiber.Ctx) error {
	infos, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	if infos == nil {
		infos = []*node.Info{}
	}
	return c.JSON(infos)
}

func (h *handlers) logs(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	lines, err := h.svc.Logs(c.UserContext(), id)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []string{}
	}
	return c.JSON(LogsResponse{Name: node.ContainerName(id), Lines: lines})
}

func (h *handlers) health(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	result, err := h.svc.Health(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *handlers) events(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	events, err := h.svc.Events(c.UserContext(), id)
	if err != nil {
		return err
	}
	if events == nil {
		return c.JSON([]struct{}{})
	}
	return c.JSON(events)
}

func (h *handlers) single(op func(c *fiber.Ctx, id int) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := nodeID(c)
		if err != nil {
			return err
		}
		if err := op(c, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

func (h *handlers) start(c *fiber.Ctx) error {
	return h.single(func(c *fiber.Ctx, id int) error { return h.svc.Start(c.UserContext(), id) })(c)
}

func (h *handlers) stop(c *fiber.Ctx) error {
	return h.single(func(c *fiber.Ctx, id int) error { return h.svc.Stop(c.UserContext(), id) })(c)
}

func (h *handlers) recreate(c *fiber.Ctx) error {
	return h.single(func(c *fiber.Ctx, id int) error { return h.svc.Recreate(c.UserContext(), id) })(c)
}

func (h *handlers) requestDeletion(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	at, err := h.svc.RequestDeletion(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(DeletionRequestResponse{ID: id, RequestedAt: at, ExpiresAt: at.Add(deletion.Window)})
}

func (h *handlers) confirmDeletion(c *fiber.Ctx) error {
	return h.single(func(c *fiber.Ctx, id int) error { return h.svc.ConfirmDeletion(c.UserContext(), id) })(c)
}

// bulkNames reads the optional {"names": [...]} body.
func bulkNames(c *fiber.Ctx) ([]string, error) {
	if len(c.Body()) == 0 {
		return nil, nil
	}
	var req BulkRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.ValidationError("invalid request body: " + err.Error())
	}
	return req.Names, nil
}

func sendBulk(c *fiber.Ctx, results []lifecycle.BulkResult) error {
	status := fiber.StatusOK
	if lifecycle.Failed(results) {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(bulkResponse(results))
}

func (h *handlers) startAll(c *fiber.Ctx) error {
	names, err := bulkNames(c)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return sendBulk(c, h.svc.StartNames(c.UserContext(), names))
	}
	results, err := h.svc.StartAll(c.UserContext())
	if err != nil {
		return err
	}
	return sendBulk(c, results)
}

func (h *handlers) stopAll(c *fiber.Ctx) error {
	names, err := bulkNames(c)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return sendBulk(c, h.svc.StopNames(c.UserContext(), names))
	}
	results, err := h.svc.StopAll(c.UserContext())
	if err != nil {
		return err
	}
	return sendBulk(c, results)
}

func (h *handlers) recreateAll(c *fiber.Ctx) error {
	results, err := h.svc.RecreateAll(c.UserContext())
	if err != nil {
		return err
	}
	return sendBulk(c, results)
}
