package template

// Supports reports whether action can be applied to entity.
func Supports(action Action, entity Entity) bool {
	if !entity.Valid() {
		return false
	}

	switch action {
	case ActionCreate:
		return entity != EntityComment && entity != EntityStoryLink
	case ActionUpdate:
		return entity != EntityComment && entity != EntityStoryLink && entity != EntityTask
	case ActionDelete:
		return entity != EntityComment && entity != EntityGroup
	case ActionComment:
		return entity == EntityStory || entity == EntityEpic
	case ActionLink, ActionUnlink:
		return entity == EntityStoryLink
	case ActionCheck, ActionUncheck:
		return entity == EntityTask
	default:
		return false
	}
}

// RequiresID reports whether action needs an explicit id.
func RequiresID(action Action) bool {
	switch action {
	case ActionUpdate, ActionDelete, ActionComment, ActionUnlink, ActionCheck, ActionUncheck:
		return true
	default:
		return false
	}
}

// RequiredCreateFields lists the fields a create of entity must carry.
func RequiredCreateFields(entity Entity) []string {
	switch entity {
	case EntityStory, EntityEpic, EntityLabel, EntityObjective, EntityMilestone,
		EntityCategory, EntityGroup, EntityDocument, EntityProject:
		return []string{"name"}
	case EntityIteration:
		return []string{"name", "start_date", "end_date"}
	case EntityTask:
		return []string{"description"}
	default:
		return nil
	}
}

// FieldEntity returns the entity whose fields an operation's body describes. Comments, links and
// task check-offs are addressed through a parent but carry the fields of the implied entity.
func FieldEntity(action Action, entity Entity) Entity {
	switch action {
	case ActionComment:
		return EntityComment
	case ActionLink, ActionUnlink:
		return EntityStoryLink
	case ActionCheck, ActionUncheck:
		return EntityTask
	default:
		return entity
	}
}

var (
	ownershipFields = []string{
		"owner", "owners", "owner_ids", "followers", "follower_ids", "requested_by", "requested_by_id",
	}

	knownFields = map[Entity][]string{
		EntityStory: append([]string{
			"name", "description", "type", "story_type", "state", "workflow_state_id", "labels", "label_ids",
			"epic_id", "iteration_id", "project_id", "group_id", "estimate", "deadline", "custom_fields",
			"tasks", "external_links", "external_id", "archived", "story_links", "file_ids",
			"linked_file_ids", "comments", "move_to", "before_id", "after_id",
		}, ownershipFields...),
		EntityEpic: append([]string{
			"name", "description", "state", "epic_state_id", "labels", "label_ids", "group_id", "group_ids",
			"objective_ids", "milestone_id", "deadline", "planned_start_date", "started_at_override",
			"completed_at_override", "archived", "external_id", "custom_fields",
		}, ownershipFields...),
		EntityIteration: {
			"name", "description", "start_date", "end_date", "labels", "group_ids", "followers",
			"follower_ids",
		},
		EntityLabel:     {"name", "description", "color", "archived", "external_id"},
		EntityObjective: {"name", "description", "state", "categories", "started_at_override", "completed_at_override", "archived"},
		EntityMilestone: {"name", "description", "state", "categories", "started_at_override", "completed_at_override", "archived"},
		EntityCategory:  {"name", "color", "type", "external_id", "archived"},
		EntityGroup: {
			"name", "mention_name", "description", "member_ids", "workflow_ids", "color", "color_key",
			"display_icon_id", "archived",
		},
		EntityDocument: {"name", "content", "content_file", "content_format"},
		EntityProject: {
			"name", "description", "abbreviation", "color", "team_id", "iteration_length", "start_time",
			"followers", "follower_ids", "archived", "external_id",
		},
		EntityTask:      {"description", "complete", "owner", "owners", "owner_ids", "story_id", "position", "external_id"},
		EntityComment:   {"text", "text_file", "story_id", "epic_id", "author_id", "parent_id", "external_id"},
		EntityStoryLink: {"subject_id", "object_id", "verb"},
	}
)

// KnownField reports whether field may appear in the body of an operation on entity.
func KnownField(entity Entity, field string) bool {
	for _, f := range knownFields[entity] {
		if f == field {
			return true
		}
	}

	return false
}
