package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"fanhub/models"
	"fanhub/services"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type playerRequest struct {
	Name     *string `json:"name"`
	Position *string `json:"position"`
	Club     *string `json:"club"`
	Cost     *int64  `json:"cost"`
	Points   *int64  `json:"points"`
	IsActive *bool   `json:"is_active"`
}

func (r playerRequest) apply(p *models.Player) string {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Position != nil {
		p.Position = strings.ToUpper(strings.TrimSpace(*r.Position))
	}
	if r.Club != nil {
		p.Club = strings.TrimSpace(*r.Club)
	}
	if r.Cost != nil {
		p.Cost = *r.Cost
	}
	if r.Points != nil {
		p.Points = *r.Points
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if missing := p.MissingFields(); missing != "" {
		return "missing field " + missing
	}
	if p.Cost < 0 {
		return "cost must not be negative"
	}
	return ""
}

// GET /api/fantasy/players?position=
func GetPlayers(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	query := db.Where("association_id = ? AND is_active = ?", member.AssociationID, true)
	if position := strings.ToUpper(strings.TrimSpace(c.Query("position"))); position != "" {
		query = query.Where("position = ?", position)
	}
	players := []models.Player{}
	if err := query.Order("points desc, name asc").Find(&players).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"players": players})
}

// POST /api/fantasy/players (admin)
func CreatePlayer(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	player := models.Player{AssociationID: member.AssociationID, IsActive: true}
	if msg := req.apply(&player); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	if err := createWithFlags(db, &player, map[string]bool{"is_active": player.IsActive}); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"player": player})
}

// PUT /api/fantasy/players/:id (admin), including matchday points.
func UpdatePlayer(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	var player models.Player
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&player).Error; err != nil {
		RespondError(c, "player not found", http.StatusNotFound)
		return
	}
	if msg := req.apply(&player); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}
	if err := db.Save(&player).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"player": player})
}

type teamView struct {
	Team      models.FantasyTeam `json:"team"`
	Players   []models.Player    `json:"players"`
	CaptainID int64              `json:"captain_id"`
	Cost      int64              `json:"cost"`
	Points    int64              `json:"points"`
	Budget    int64              `json:"budget"`
}

// loadTeamPlayers returns the picked players in pick order and the captain id.
func loadTeamPlayers(db *gorm.DB, team models.FantasyTeam) ([]models.Player, int64, error) {
	if len(team.Picks) == 0 {
		return []models.Player{}, 0, nil
	}
	ids := make([]int64, 0, len(team.Picks))
	var captainID int64
	for _, p := range team.Picks {
		ids = append(ids, p.PlayerID)
		if p.IsCaptain {
			captainID = p.PlayerID
		}
	}
	var players []models.Player
	if err := db.Where("id IN (?)", ids).Find(&players).Error; err != nil {
		return nil, 0, err
	}
	byID := map[int64]models.Player{}
	for _, p := range players {
		byID[p.ID] = p
	}
	ordered := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, captainID, nil
}

// GET /api/fantasy/team
func GetMyTeam(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	var team models.FantasyTeam
	err := db.Preload("Picks").Where("member_id = ?", member.ID).First(&team).Error
	if gorm.IsRecordNotFoundError(err) {
		RespondSuccess(c, gin.H{"team": nil, "budget": conf.Fantasy.Budget})
		return
	}
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	players, captainID, err := loadTeamPlayers(db, team)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, teamView{
		Team:      team,
		Players:   players,
		CaptainID: captainID,
		Cost:      services.SquadCost(players),
		Points:    services.TeamPoints(players, captainID),
		Budget:    conf.Fantasy.Budget,
	})
}

type SaveTeamRequest struct {
	Name      string  `json:"name"`
	PlayerIDs []int64 `json:"player_ids"`
	CaptainID int64   `json:"captain_id"`
}

func squadErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSquadTooLarge),
		errors.Is(err, services.ErrOverBudget),
		errors.Is(err, services.ErrTooManyFromClub),
		errors.Is(err, services.ErrTooManyGoalkeepers),
		errors.Is(err, services.ErrCaptainRequired),
		errors.Is(err, services.ErrDuplicatePlayer),
		errors.Is(err, services.ErrPlayerUnavailable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PUT /api/fantasy/team  {name, player_ids, captain_id}
// Replaces the whole squad after validating the selection rules.
func SaveMyTeam(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req SaveTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		RespondError(c, "name is required", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	players := []models.Player{}
	if len(req.PlayerIDs) > 0 {
		var found []models.Player
		if err := db.Where("id IN (?) AND association_id = ?", req.PlayerIDs, member.AssociationID).Find(&found).Error; err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		byID := map[int64]models.Player{}
		for _, p := range found {
			byID[p.ID] = p
		}
		for _, id := range req.PlayerIDs {
			p, ok := byID[id]
			if !ok {
				RespondError(c, services.ErrPlayerUnavailable.Error(), http.StatusBadRequest)
				return
			}
			players = append(players, p)
		}
	}

	if err := services.ValidateSquad(players, req.CaptainID, squadRules()); err != nil {
		RespondError(c, err.Error(), squadErrorStatus(err))
		return
	}

	tx := db.Begin()
	var team models.FantasyTeam
	err := tx.Where("member_id = ?", member.ID).First(&team).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		team = models.FantasyTeam{MemberID: member.ID, AssociationID: member.AssociationID, Name: req.Name}
		err = tx.Create(&team).Error
	case err == nil:
		team.Name = req.Name
		err = tx.Save(&team).Error
	}
	if err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if err := tx.Where("team_id = ?", team.ID).Delete(&models.FantasyPick{}).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	picks := make([]models.FantasyPick, 0, len(players))
	for _, p := range players {
		pick := models.FantasyPick{TeamID: team.ID, PlayerID: p.ID, IsCaptain: p.ID == req.CaptainID}
		if err := tx.Create(&pick).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		picks = append(picks, pick)
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	team.Picks = picks

	captainID := int64(0)
	if len(players) > 0 {
		captainID = req.CaptainID
	}
	RespondSuccess(c, teamView{
		Team:      team,
		Players:   players,
		CaptainID: captainID,
		Cost:      services.SquadCost(players),
		Points:    services.TeamPoints(players, captainID),
		Budget:    conf.Fantasy.Budget,
	})
}

type leaderboardEntry struct {
	Rank       int    `json:"rank"`
	TeamID     int64  `json:"team_id"`
	TeamName   string `json:"team_name"`
	MemberID   int64  `json:"member_id"`
	MemberName string `json:"member_name"`
	Points     int64  `json:"points"`
}

// GET /api/fantasy/leaderboard?limit=
func GetLeaderboard(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	limit := clampInt(queryInt(c, "limit", 20), 1, 100)

	var teams []models.FantasyTeam
	if err := db.Preload("Picks").Where("association_id = ?", member.AssociationID).Find(&teams).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var players []models.Player
	if err := db.Where("association_id = ?", member.AssociationID).Find(&players).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	pointsByPlayer := map[int64]int64{}
	for _, p := range players {
		pointsByPlayer[p.ID] = p.Points
	}

	memberIDs := make([]int64, 0, len(teams))
	entries := make([]leaderboardEntry, 0, len(teams))
	for _, t := range teams {
		var total int64
		for _, pick := range t.Picks {
			pts := pointsByPlayer[pick.PlayerID]
			total += pts
			if pick.IsCaptain {
				total += pts
			}
		}
		entries = append(entries, leaderboardEntry{TeamID: t.ID, TeamName: t.Name, MemberID: t.MemberID, Points: total})
		memberIDs = append(memberIDs, t.MemberID)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].TeamID < entries[j].TeamID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	names := map[int64]string{}
	if len(memberIDs) > 0 {
		var members []models.Member
		db.Select("id, name").Where("id IN (?)", memberIDs).Find(&members)
		for _, m := range members {
			names[m.ID] = m.Name
		}
	}
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].MemberName = names[entries[i].MemberID]
	}

	RespondSuccess(c, gin.H{"leaderboard": entries})
}
