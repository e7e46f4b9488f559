package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	cornerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Corner",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	importFlagsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ImportFlags",
		Fields: graphql.Fields{
			"terrain":           &graphql.Field{Type: graphql.Boolean},
			"buildings":         &graphql.Field{Type: graphql.Boolean},
			"trees":             &graphql.Field{Type: graphql.Boolean},
			"replaceExisting":   &graphql.Field{Type: graphql.Boolean},
			"cleanIntermediate": &graphql.Field{Type: graphql.Boolean},
		},
	})

	artifactType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Artifact",
		Fields: graphql.Fields{
			"kind": &graphql.Field{Type: graphql.String},
			"path": &graphql.Field{Type: graphql.String},
		},
	})

	recordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SceneRecord",
		Fields: graphql.Fields{
			"title":        &graphql.Field{Type: graphql.String},
			"savedAt":      &graphql.Field{Type: graphql.String},
			"southWest":    &graphql.Field{Type: cornerType},
			"northEast":    &graphql.Field{Type: cornerType},
			"areaSqMeters": &graphql.Field{Type: graphql.Float},
			"origin":       &graphql.Field{Type: cornerType},
			"importFlags":  &graphql.Field{Type: importFlagsType},
			"lastRunAt":    &graphql.Field{Type: graphql.String},
			"artifacts":    &graphql.Field{Type: graphql.NewList(artifactType)},
		},
	})

	sceneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Scene",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"title":   &graphql.Field{Type: graphql.String},
			"savedAt": &graphql.Field{Type: graphql.String},
			"record":  &graphql.Field{Type: recordType},
		},
	})

	scenePageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScenePage",
		Fields: graphql.Fields{
			"total":  &graphql.Field{Type: graphql.Int},
			"offset": &graphql.Field{Type: graphql.Int},
			"limit":  &graphql.Field{Type: graphql.Int},
			"items":  &graphql.Field{Type: graphql.NewList(sceneType)},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"revision":         &graphql.Field{Type: graphql.Int},
			"rectangleCapture": &graphql.Field{Type: graphql.String},
			"pointCapture":     &graphql.Field{Type: graphql.String},
			"record":           &graphql.Field{Type: recordType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"scene": &graphql.Field{
				Type:        sceneType,
				Description: "Get a saved scene by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					s, err := deps.Sessions.GetSaved(p.Context, id)
					if errors.Is(err, domain.ErrSceneNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return sceneMap(s)
				},
			},
			"scenes": &graphql.Field{
				Type:        scenePageType,
				Description: "List saved scenes, most recent first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					scenes, total, err := deps.Sessions.ListSaved(p.Context, offset, limit)
					if err != nil {
						return nil, err
					}
					items := make([]map[string]interface{}, 0, len(scenes))
					for i := range scenes {
						m, err := sceneMap(&scenes[i])
						if err != nil {
							return nil, err
						}
						items = append(items, m)
					}
					return map[string]interface{}{
						"total":  total,
						"offset": offset,
						"limit":  limit,
						"items":  items,
					}, nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get a live editing session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Sessions.Get(p.Args["id"].(string))
					if errors.Is(err, domain.ErrSessionNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					rect, point := sess.CaptureState()
					cfg := sess.Snapshot()
					return map[string]interface{}{
						"id":               sess.ID(),
						"revision":         int(sess.Revision()),
						"rectangleCapture": rect.String(),
						"pointCapture":     point.String(),
						"record":           recordMap(&cfg),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// sceneMap converts a stored scene for GraphQL.
func sceneMap(s *domain.StoredScene) (map[string]interface{}, error) {
	cfg, err := usecases.DecodeRecord(s.Record)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":      s.ID,
		"title":   s.Title,
		"savedAt": s.SavedAt.Format(time.RFC3339),
		"record":  recordMap(cfg),
	}, nil
}

func recordMap(cfg *domain.SceneConfig) map[string]interface{} {
	m := map[string]interface{}{
		"title":        cfg.Title,
		"savedAt":      nil,
		"southWest":    cornerMap(cfg.Area.SouthWest),
		"northEast":    cornerMap(cfg.Area.NorthEast),
		"areaSqMeters": nil,
		"origin":       cornerMap(cfg.Origin),
		"importFlags": map[string]interface{}{
			"terrain":           cfg.ImportFlags.Terrain,
			"buildings":         cfg.ImportFlags.Buildings,
			"trees":             cfg.ImportFlags.Trees,
			"replaceExisting":   cfg.ImportFlags.ReplaceExisting,
			"cleanIntermediate": cfg.ImportFlags.CleanIntermediate,
		},
		"lastRunAt": nil,
	}
	if cfg.SavedAt != nil {
		m["savedAt"] = cfg.SavedAt.Format(time.RFC3339)
	}
	if cfg.Area.AreaSqMeters != nil {
		m["areaSqMeters"] = *cfg.Area.AreaSqMeters
	}
	if cfg.Status.LastRunAt != nil {
		m["lastRunAt"] = cfg.Status.LastRunAt.Format(time.RFC3339)
	}
	artifacts := make([]map[string]interface{}, 0, len(cfg.Status.GeneratedArtifactPaths))
	for kind, path := range cfg.Status.GeneratedArtifactPaths {
		artifacts = append(artifacts, map[string]interface{}{"kind": kind, "path": path})
	}
	m["artifacts"] = artifacts
	return m
}

func cornerMap(c domain.Corner) map[string]interface{} {
	m := map[string]interface{}{"lat": nil, "lng": nil}
	if c.Lat != nil {
		m["lat"] = *c.Lat
	}
	if c.Lng != nil {
		m["lng"] = *c.Lng
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
